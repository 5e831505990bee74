package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Bookings     *BookingHandler
	Reservations *ReservationHandler
	Calendar     *CalendarHandler
	Export       *ExportHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Bookings != nil {
		steps := map[string]http.HandlerFunc{
			"/bookings":              cfg.Bookings.Start,
			"/bookings/room":         cfg.Bookings.ChooseRoom,
			"/bookings/title":        cfg.Bookings.SetTitle,
			"/bookings/participants": cfg.Bookings.SelectParticipants,
			"/bookings/finish":       cfg.Bookings.Finish,
		}
		for path, step := range steps {
			step := step
			mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				step(w, r)
			})
		}
	}

	if cfg.Reservations != nil {
		mux.HandleFunc("/reservations/cancellable", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reservations.Cancellable(w, r)
		})
		mux.HandleFunc("/reservations/cancellable/months", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reservations.CancellableMonths(w, r)
		})
		mux.HandleFunc("/reservations/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/reservations/")
			id, action, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithReservationID(r.Context(), id)
			r = r.WithContext(ctx)
			switch action {
			case "cancel":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Reservations.Cancel(w, r)
			case "attendance":
				switch r.Method {
				case http.MethodPost:
					cfg.Reservations.RecordAttendance(w, r)
				case http.MethodGet:
					cfg.Reservations.AttendanceStatus(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Calendar != nil {
		mux.HandleFunc("/calendar/months", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Months(w, r)
		})
		mux.HandleFunc("/calendar/view", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Calendar.Open(w, r)
		})
		mux.HandleFunc("/calendar/page", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Calendar.Move(w, r)
		})
		mux.HandleFunc("/calendar/mine", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Mine(w, r)
		})
	}

	if cfg.Export != nil {
		mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Export.Download(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
