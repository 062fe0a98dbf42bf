// Package monitor implements the poll loop that turns successive snapshots of
// recent chain state into a de-duplicated, chronologically ordered and
// incrementally aggregated stream of display events.
//
// Terminology
//   - State: the running totals (blocks processed, blobs processed) and the
//     high-water mark LastProcessedHeight. Only the Engine mutates it.
//   - Cycle: one pass over the latest block window. RunCycle is a step function
//     (state, source) -> (state, events); it never returns an error.
//   - Sink: the one-way consumer of events (terminal dashboard, log, ...).
//
// Cycle outline
//  1. Fetch the latest Window blocks. A failure here produces a single
//     ErrorEvent and nothing else.
//  2. Keep blocks above LastProcessedHeight and order them by ascending height.
//  3. For each block fetch its stats, fold them into State, emit a BlockEvent,
//     then fetch its blobs and emit one BlobEvent per blob that passes the
//     namespace Filter. A failed stats fetch still advances
//     LastProcessedHeight so a permanently missing block is not retried.
//  4. Fetch the rollup list (replacing the previous one wholesale) and emit a
//     StatsEvent with the totals.
//
// Every failure is scoped to one fetch and reported as exactly one ErrorEvent.
// Engine.Run drives one cycle per interval; cancellation is observed only
// between cycles.
package monitor
