// Package constants holds shared limits and timeouts for the mira client.
package constants

import "time"

// PageSize is the number of conversations shown per page.
const PageSize = 50

// ChatFetchLimit caps how many conversations one load request asks for.
const ChatFetchLimit = 5000

// MessageFetchLimit caps how many messages one thread load asks for.
const MessageFetchLimit = 500

// TimestampMillisFloor separates second-resolution timestamps from
// millisecond-resolution ones. Numeric timestamps below this value are
// seconds and get scaled by 1000.
const TimestampMillisFloor = 1_000_000_000_000

// NoticeTTL is how long a transient warning stays visible.
const NoticeTTL = 5 * time.Second

// RequestTimeout bounds every backend request.
const RequestTimeout = 10 * time.Second

// NarrowWidth is the terminal width below which the chats screen collapses
// to a single panel and back becomes a two-step action.
const NarrowWidth = 80
