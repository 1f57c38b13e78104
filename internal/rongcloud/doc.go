// Package rongcloud is a client for the RongCloud instant-messaging server API.
//
// Every call goes through one pipeline. The [Signer] derives a fresh nonce,
// timestamp and SHA-1 signature for the request. The [Client] chooses the
// body encoding from the action's content type and POSTs to
// APIHost + path + "." + format. It then normalizes the JSON reply into a
// [Response].
//
// Remote operations are described by the static [Action] table. [Client.Invoke]
// sends any catalog action by name. The typed helpers (GetToken,
// PublishPrivate, GroupSync, Push ...) only shape parameters.
//
// Success is decided by the payload: [Response.Success] is true only when the
// body's "code" field is the integer 200. A logical failure is a normal
// return value. An error is returned only for transport failures
// ([TransportError]), unparseable replies and misuse such as an unknown
// action or an unsupported content type.
//
// No call is retried. A Client is safe for concurrent use.
package rongcloud
