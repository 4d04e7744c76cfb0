// Package bridge turns persistence lifecycle hooks into broadcast events.
package bridge

import (
	"encoding/json"
	"log/slog"

	"github.com/thenoetrevino/pasosync/internal/daemon"
	"github.com/thenoetrevino/pasosync/internal/database"
	"github.com/thenoetrevino/pasosync/internal/events"
	"github.com/thenoetrevino/pasosync/internal/models"
)

// Publisher fans an event out to every connected client
type Publisher interface {
	Publish(eventType events.EventType, payload any) daemon.Delivery
}

type change struct {
	kind      models.EntityKind
	lifecycle models.Lifecycle
}

// eventTypes is the complete set of changes that reach the wire
var eventTypes = map[change]events.EventType{
	{models.EntityProject, models.LifecycleInsert}: events.ProjectCreated,
	{models.EntityProject, models.LifecycleUpdate}: events.ProjectUpdated,
	{models.EntityProject, models.LifecycleDelete}: events.ProjectDeleted,
	{models.EntityTask, models.LifecycleInsert}:    events.TaskCreated,
	{models.EntityTask, models.LifecycleUpdate}:    events.TaskUpdated,
	{models.EntityTask, models.LifecycleDelete}:    events.TaskDeleted,
}

// labelFields names the human-readable field kept in a delete payload
var labelFields = map[models.EntityKind]string{
	models.EntityProject: "name",
	models.EntityTask:    "title",
}

// EventTypeFor returns the wire event for a change, if one is mapped
func EventTypeFor(kind models.EntityKind, lifecycle models.Lifecycle) (events.EventType, bool) {
	t, ok := eventTypes[change{kind, lifecycle}]
	return t, ok
}

// Bridge implements database.Hooks by publishing each change
type Bridge struct {
	publisher Publisher
	logger    *slog.Logger
}

var _ database.Hooks = (*Bridge)(nil)

// New creates a bridge publishing to p
func New(p Publisher, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{publisher: p, logger: logger.With("component", "bridge")}
}

func (b *Bridge) AfterInsert(kind models.EntityKind, doc any) {
	b.fire(kind, models.LifecycleInsert, doc)
}

func (b *Bridge) AfterUpdate(kind models.EntityKind, doc any) {
	b.fire(kind, models.LifecycleUpdate, doc)
}

func (b *Bridge) AfterDelete(kind models.EntityKind, doc any) {
	b.fire(kind, models.LifecycleDelete, doc)
}

func (b *Bridge) fire(kind models.EntityKind, lifecycle models.Lifecycle, doc any) {
	eventType, ok := EventTypeFor(kind, lifecycle)
	if !ok {
		b.logger.Debug("no event mapped for change", "entity", kind, "lifecycle", lifecycle)
		return
	}
	if doc == nil {
		b.logger.Warn("change hook fired without a document", "event_type", eventType)
		return
	}

	payload := doc
	if lifecycle == models.LifecycleDelete {
		reduced, err := reduceDeleted(kind, doc)
		if err != nil {
			b.logger.Warn("skipping delete broadcast", "event_type", eventType, "error", err)
			return
		}
		payload = reduced
	}

	d := b.publisher.Publish(eventType, payload)
	b.logger.Debug("change published",
		"event_type", eventType,
		"event_id", d.EventID,
		"delivered", d.Delivered)
}

// reduceDeleted keeps only the identity and label of a deleted document.
// The document is read through its JSON form so any shape with an _id works.
func reduceDeleted(kind models.EntityKind, doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errMissingID
	}

	id, _ := fields["_id"].(string)
	if id == "" {
		return nil, errMissingID
	}

	reduced := map[string]any{"_id": id}
	if field, ok := labelFields[kind]; ok {
		if label, ok := fields[field]; ok {
			reduced[field] = label
		}
	}
	return reduced, nil
}
