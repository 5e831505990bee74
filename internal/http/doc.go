// Package http adapts the booking core to the chat transport over a JSON API.
//
// Every endpoint expects the transport to forward the acting user in the
// `X-User-ID` header (display name in `X-User-Name`). The router exposes:
//   - POST /bookings: starts a booking session with {"date","time"} and
//     returns the rooms still free for the slot.
//   - POST /bookings/room, /bookings/title, /bookings/participants,
//     /bookings/finish: advance the session step by step; /bookings/title
//     returns the invitable member candidates, /bookings/finish commits the
//     reservation (or refuses with 409 when the slot was taken meanwhile).
//   - POST /reservations/{id}/cancel: soft-cancels a reservation the acting
//     user organises or participates in.
//   - POST /reservations/{id}/attendance with {"decision"} and GET of the
//     same path: record and inspect attendance votes.
//   - GET /reservations/cancellable and /reservations/cancellable/months:
//     what the acting user could still cancel, grouped by MM/YYYY.
//   - GET /calendar/months, POST /calendar/view {"month"}, POST
//     /calendar/page {"delta"}: the paged month listing. Opening a view
//     lands on the last page; moving past an expired cursor returns 410.
//   - GET /calendar/mine?month=MM/YYYY: the acting user's own reservations.
//   - POST /export {"passcode"}: streams the full history as an xlsx
//     workbook when the passcode matches.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
