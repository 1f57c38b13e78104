package common

import "context"

// Adapter dispatches a validated action request upstream. A well-formed reply
// is returned as a DispatchResult even when it reports a logical failure;
// errors are reserved for requests that produced no usable reply and are
// classified with WrapTransient or WrapPermanent.
type Adapter interface {
	Send(ctx context.Context, msg *ValidatedMessage) (*DispatchResult, error)
}
