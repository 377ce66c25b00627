package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the process-level settings of the HTTP surface.
type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
}

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Attendance   AttendanceHandler
	Checkin      CheckinHandler
	Expense      ExpenseHandler
	Leave        LeaveHandler
	Master       MasterHandler
	Notification NotificationHandler
	Sync         SyncHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, receiver erpsync.Receiver, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ess-attendance"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		// SSE authenticates with a short-lived token in the query string
		r.Get("/notifications/stream", h.Notification.Stream)

		// Peer-to-peer sync, authenticated by API key
		r.Group(func(r chi.Router) {
			r.Use(middleware.SyncKeyRequired(receiver))
			r.Post("/sync/receive/{doctype}", h.Sync.Receive)
			r.Get("/sync/export/{doctype}", h.Sync.Export)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireCompany)

			r.Route("/checkins", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCheckinCreate))
					r.Use(middleware.RequireEmployee)
					r.Post("/", h.Checkin.Create)
					r.Get("/my", h.Checkin.ListMy)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCheckinApprove))
					r.Get("/pending", h.Checkin.ListPending)
					r.Post("/{id}/approve", h.Checkin.Approve)
					r.Post("/{id}/reject", h.Checkin.Reject)
				})
			})

			r.Route("/attendances", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn), middleware.RequireEmployee).
					Get("/my", h.Attendance.GetMy)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).
					Get("/", h.Attendance.List)
				r.With(middleware.RequirePermission(user.PermissionAttendanceProcess)).
					Post("/process", h.Attendance.Process)
			})

			r.Route("/locations", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionLocationManage))
				r.Get("/", h.Master.ListShiftConfigs)
				r.Get("/{name}/shift", h.Master.GetShiftConfig)
				r.Put("/{name}/shift", h.Master.UpsertShiftConfig)
			})

			r.Route("/overtimes", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionOvertimeManage))
				r.Post("/", h.Master.CreateOvertime)
				r.Get("/", h.Master.ListOvertimes)
				r.Delete("/{id}", h.Master.DeleteOvertime)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate), middleware.RequireEmployee).
					Post("/", h.Leave.Apply)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn), middleware.RequireEmployee).
					Get("/my", h.Leave.ListMy)
				r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).
					Get("/balance", h.Leave.GetBalance)
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).
					Post("/{id}/cancel", h.Leave.Cancel)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
					r.Post("/{id}/approve", h.Leave.Approve)
					r.Post("/{id}/reject", h.Leave.Reject)
				})
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionExpenseCreate))
					r.With(middleware.RequireEmployee).Post("/", h.Expense.Create)
					r.With(middleware.RequireEmployee).Get("/my", h.Expense.ListMy)
					r.Get("/types", h.Expense.ListTypes)
					r.Get("/{id}", h.Expense.Get)
					r.Get("/{id}/invoice", h.Expense.Invoice)
					r.Post("/{id}/cancel", h.Expense.Cancel)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionExpenseApprove))
					r.Get("/pending", h.Expense.ListPending)
					r.Post("/{id}/approve", h.Expense.Approve)
					r.Post("/{id}/reject", h.Expense.Reject)
				})

				r.With(middleware.RequirePermission(user.PermissionExpensePost)).
					Post("/{id}/post", h.Expense.Post)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionNotificationBroadcast)).
					Post("/broadcast", h.Notification.Broadcast)
				r.Get("/", h.Notification.List)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Put("/preferences", h.Notification.UpdatePreference)
				r.Post("/sse-token", h.Notification.GetSSEToken)
			})

			r.Route("/sync", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionSyncManage))

				r.Route("/peers", func(r chi.Router) {
					r.Get("/", h.Sync.ListPeers)
					r.Post("/", h.Sync.CreatePeer)
					r.Put("/{id}", h.Sync.UpdatePeer)
					r.Post("/{id}/pull", h.Sync.InitialPull)
				})

				r.Get("/queue", h.Sync.ListQueue)
				r.Post("/queue/{id}/retry", h.Sync.RetryQueueItem)

				r.Post("/employee-pulls", h.Sync.SaveEmployeePull)
				r.Post("/sales-order-pulls", h.Sync.SaveSalesOrderPull)
				r.Post("/leader-locations", h.Sync.SaveLeaderLocation)
			})
		})
	})
	return r
}
