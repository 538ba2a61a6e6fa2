package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"sharesphere-backend/internal/push"
	"sharesphere-backend/internal/repository"
	"sharesphere-backend/internal/security"
	"sharesphere-backend/internal/service"
	"sharesphere-backend/internal/storage"
)

// Server bundles the HTTP surface: every handler hangs off it.
type Server struct {
	authSvc      service.AuthService
	itemSvc      service.ItemService
	txSvc        service.TransactionService
	ledgerSvc    service.LedgerService
	complaintSvc service.ComplaintService
	reviewSvc    service.ReviewService
	chatSvc      service.ChatService
	noteSvc      service.NotificationService
	dashboardSvc service.DashboardService

	tokens   security.TokenManager
	userRepo repository.UserRepository
	images   *storage.ImageStore
	hub      *push.Hub
}

type ServerParams struct {
	Auth      service.AuthService
	Items     service.ItemService
	Tx        service.TransactionService
	Ledger    service.LedgerService
	Complaint service.ComplaintService
	Review    service.ReviewService
	Chat      service.ChatService
	Notes     service.NotificationService
	Dashboard service.DashboardService

	Tokens   security.TokenManager
	UserRepo repository.UserRepository
	Images   *storage.ImageStore
	Hub      *push.Hub
}

func NewServer(p ServerParams) *Server {
	return &Server{
		authSvc:      p.Auth,
		itemSvc:      p.Items,
		txSvc:        p.Tx,
		ledgerSvc:    p.Ledger,
		complaintSvc: p.Complaint,
		reviewSvc:    p.Review,
		chatSvc:      p.Chat,
		noteSvc:      p.Notes,
		dashboardSvc: p.Dashboard,
		tokens:       p.Tokens,
		userRepo:     p.UserRepo,
		images:       p.Images,
		hub:          p.Hub,
	}
}

// Router assembles the full route table under /api.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/uploads/{key}", s.handleServeImage).Methods(http.MethodGet)

	// Authenticated routes; banned accounts are limited to reads.
	authed := api.NewRoute().Subrouter()
	authed.Use(mux.MiddlewareFunc(s.authMiddleware), mux.MiddlewareFunc(banGateMiddleware(s.userRepo)))

	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}", s.handlePublicProfile).Methods(http.MethodGet)

	authed.HandleFunc("/uploads", s.handleUploadImages).Methods(http.MethodPost)

	authed.HandleFunc("/items", s.handleCreateItem).Methods(http.MethodPost)
	authed.HandleFunc("/items", s.handleListItems).Methods(http.MethodGet)
	authed.HandleFunc("/items/suggest-tokens", s.handleSuggestTokens).Methods(http.MethodGet)
	authed.HandleFunc("/items/mine", s.handleListMyItems).Methods(http.MethodGet)
	authed.HandleFunc("/items/{id}", s.handleGetItem).Methods(http.MethodGet)
	authed.HandleFunc("/items/{id}/status", s.handleSetItemStatus).Methods(http.MethodPut)
	authed.HandleFunc("/items/{id}", s.handleDeleteItem).Methods(http.MethodDelete)

	authed.HandleFunc("/transactions", s.handleRequestBorrow).Methods(http.MethodPost)
	authed.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/{id}/approve", s.handleApprove).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id}/reject", s.handleReject).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id}/confirm-delivery", s.handleConfirmDelivery).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id}/confirm-return", s.handleConfirmReturn).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id}/report-damage", s.handleReportDamage).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id}/review", s.handleSubmitReview).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id}/messages", s.handleSendMessage).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id}/messages", s.handleChatHistory).Methods(http.MethodGet)

	authed.HandleFunc("/tokens/balance", s.handleBalance).Methods(http.MethodGet)
	authed.HandleFunc("/tokens/history", s.handleLedgerHistory).Methods(http.MethodGet)
	authed.HandleFunc("/tokens/penalties", s.handleListPenalties).Methods(http.MethodGet)
	authed.HandleFunc("/tokens/penalties/{id}/pay", s.handlePayPenalty).Methods(http.MethodPost)

	authed.HandleFunc("/complaints", s.handleFileComplaint).Methods(http.MethodPost)
	authed.HandleFunc("/complaints", s.handleListComplaints).Methods(http.MethodGet)

	authed.HandleFunc("/reviews/user/{id}", s.handleListReviews).Methods(http.MethodGet)

	authed.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/read-all", s.handleMarkAllRead).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/{id}/read", s.handleMarkRead).Methods(http.MethodPost)

	authed.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	authed.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)

	// Moderation routes
	admin := api.NewRoute().Subrouter()
	admin.Use(mux.MiddlewareFunc(s.authMiddleware), mux.MiddlewareFunc(adminMiddleware))
	admin.HandleFunc("/admin/complaints/{id}/resolve", s.handleResolveComplaint).Methods(http.MethodPost)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"connected_users": s.hub.ConnectedUsers(),
	})
}
