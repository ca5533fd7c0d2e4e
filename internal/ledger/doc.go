// Package ledger keeps a client-visible view of code votes: the caller's
// current polarity per item and an optimistic upvote/downvote tally that is
// reconciled with the server-of-record count after every successful write.
//
// A cast is a two-phase operation. The tally is adjusted tentatively before
// the gateway write; the write either confirms it (followed by a full server
// recount) or the adjustment is compensated and ErrVoteWriteFailed returned.
package ledger
