package bridge

import "errors"

var errMissingID = errors.New("deleted document has no _id")
