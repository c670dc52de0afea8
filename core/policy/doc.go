// Package policy evaluates schedules against no-meeting day and focus time
// rules and decides whether a proposed meeting time may override a calendar
// block. Evaluation is stateless; blocks and configured no-meeting days are
// read from a BlockStore.
package policy
