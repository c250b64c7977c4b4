package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/orgdir/identity-backend/shared/monitoring"
	"github.com/orgdir/identity-backend/shared/utils"
	"github.com/orgdir/identity-backend/v1/middleware"
	"github.com/orgdir/identity-backend/v1/models"
	"github.com/orgdir/identity-backend/v1/services"
	authutils "github.com/orgdir/identity-backend/v1/utils"

	"gorm.io/gorm"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// V1Handler handles all API routes
type V1Handler struct {
	authService         *services.AuthService
	organisationService *services.OrganisationService
	userService         *services.UserService
}

// NewV1Handler creates a new handler over the given database connection
func NewV1Handler(db *gorm.DB, tokens *services.TokenService) *V1Handler {
	return &V1Handler{
		authService:         services.NewAuthService(db, tokens),
		organisationService: services.NewOrganisationService(db),
		userService:         services.NewUserService(db),
	}
}

// SetupAuthRoutes configures the public authentication routes
func (h *V1Handler) SetupAuthRoutes(mux *http.ServeMux) {
	mux.Handle("/auth/register", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleRegister)))
	mux.Handle("/auth/login", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleLogin)))
}

// SetupV1Routes configures the protected API routes. Every route runs behind
// the bearer-token middleware.
func (h *V1Handler) SetupV1Routes(mux *http.ServeMux, auth *middleware.AuthMiddleware) {
	protect := func(handler http.HandlerFunc) http.Handler {
		return utils.PanicRecoveryMiddleware(auth.Authenticate(handler))
	}

	// Organisation routes
	mux.Handle("/api/organisations", protect(h.handleOrganisations))
	mux.Handle("/api/organisations/", protect(h.handleOrganisations))

	// User routes
	mux.Handle("/api/users/", protect(h.handleUsers))
}

// handleRegister handles POST /auth/register
func (h *V1Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithFailure(w, http.StatusMethodNotAllowed, "Bad request", "Method not allowed")
		return
	}

	var req models.RegisterRequest
	if err := utils.ParseJSONRequest(r, &req); err != nil {
		utils.RespondWithFailure(w, http.StatusBadRequest, "Bad request", "Invalid request body")
		return
	}

	if errs := models.ValidateRegisterRequest(&req); len(errs) > 0 {
		utils.RespondWithFieldErrors(w, errs)
		return
	}

	data, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			monitoring.RecordAuthEvent("register", "duplicate_email")
			utils.RespondWithFieldErrors(w, []utils.FieldError{
				{Field: "email", Message: "Email already exists"},
			})
			return
		}
		slog.Error("Registration failed", "error", err, "email", req.Email)
		monitoring.RecordAuthEvent("register", "error")
		utils.RespondWithFailure(w, http.StatusInternalServerError, "Bad request", "Registration unsuccessful")
		return
	}

	monitoring.RecordAuthEvent("register", "success")
	utils.RespondWithSuccess(w, http.StatusCreated, "Registration successful", data)
}

// handleLogin handles POST /auth/login
func (h *V1Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithFailure(w, http.StatusMethodNotAllowed, "Bad request", "Method not allowed")
		return
	}

	var req models.LoginRequest
	if err := utils.ParseJSONRequest(r, &req); err != nil {
		utils.RespondWithFailure(w, http.StatusBadRequest, "Bad request", "Invalid request body")
		return
	}

	if errs := models.ValidateLoginRequest(&req); len(errs) > 0 {
		utils.RespondWithFieldErrors(w, errs)
		return
	}

	data, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		// Unknown email and wrong password produce the same response
		if errors.Is(err, services.ErrAuthenticationFailed) {
			monitoring.RecordAuthEvent("login", "failure")
			utils.RespondWithFailure(w, http.StatusUnauthorized, "Bad request", "Authentication failed")
			return
		}
		slog.Error("Login failed", "error", err)
		monitoring.RecordAuthEvent("login", "error")
		utils.RespondWithFailure(w, http.StatusInternalServerError, "Bad request", "Internal server error")
		return
	}

	monitoring.RecordAuthEvent("login", "success")
	utils.RespondWithSuccess(w, http.StatusOK, "Login successful", data)
}

// handleOrganisations handles organisation-related routes
func (h *V1Handler) handleOrganisations(w http.ResponseWriter, r *http.Request) {
	user, err := authutils.RequireAuthentication(r)
	if err != nil {
		utils.RespondWithFailure(w, http.StatusUnauthorized, "Unauthorized", "No or invalid token provided")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/organisations")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// Handle collection endpoint: GET /api/organisations and POST /api/organisations
	if len(parts) == 1 && parts[0] == "" {
		switch r.Method {
		case http.MethodGet:
			h.getOrganisations(w, r, user)
		case http.MethodPost:
			h.createOrganisation(w, r, user)
		default:
			utils.RespondWithFailure(w, http.StatusMethodNotAllowed, "Bad request", "Method not allowed")
		}
		return
	}

	orgId := parts[0]

	// Handle specific organisation endpoint: GET /api/organisations/:orgId
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.getOrganisation(w, r, user, orgId)
		default:
			utils.RespondWithFailure(w, http.StatusMethodNotAllowed, "Bad request", "Method not allowed")
		}
		return
	}

	// Handle membership endpoint: POST /api/organisations/:orgId/users
	if len(parts) == 2 && parts[1] == "users" {
		switch r.Method {
		case http.MethodPost:
			h.addUserToOrganisation(w, r, orgId)
		default:
			utils.RespondWithFailure(w, http.StatusMethodNotAllowed, "Bad request", "Method not allowed")
		}
		return
	}

	utils.RespondWithFailure(w, http.StatusNotFound, "Bad request", "Endpoint not found")
}

// handleUsers handles user profile routes
func (h *V1Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	user, err := authutils.RequireAuthentication(r)
	if err != nil {
		utils.RespondWithFailure(w, http.StatusUnauthorized, "Unauthorized", "No or invalid token provided")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/users")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) != 1 || parts[0] == "" {
		utils.RespondWithFailure(w, http.StatusNotFound, "Bad request", "Endpoint not found")
		return
	}

	// GET /api/users/:id and POST /api/users/:id both fetch the profile
	switch r.Method {
	case http.MethodGet, http.MethodPost:
		h.getUserDetails(w, r, user, parts[0])
	default:
		utils.RespondWithFailure(w, http.StatusMethodNotAllowed, "Bad request", "Method not allowed")
	}
}

// Organisation handlers

func (h *V1Handler) getOrganisations(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	organisations, err := h.organisationService.GetOrganisations(r.Context(), user.UserID)
	if err != nil {
		slog.Error("Error fetching organisations", "error", err, "userId", user.UserID)
		utils.RespondWithFailure(w, http.StatusInternalServerError, "Bad request", "Could not fetch organisations")
		return
	}

	// A user with no memberships gets an empty collection, not a 404
	utils.RespondWithSuccess(w, http.StatusOK, "Organisations fetched successfully", models.OrganisationListData{
		Organisations: organisations,
	})
}

func (h *V1Handler) getOrganisation(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser, orgId string) {
	organisation, err := h.organisationService.GetOrganisation(r.Context(), user.UserID, orgId)
	if err != nil {
		if errors.Is(err, services.ErrOrganisationNotFound) {
			utils.RespondWithFailure(w, http.StatusNotFound, "Bad request", "Organisation not found")
			return
		}
		slog.Error("Error fetching organisation", "error", err, "orgId", orgId)
		utils.RespondWithFailure(w, http.StatusInternalServerError, "Bad request", "Could not fetch organisation")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "Organisation fetched successfully", organisation)
}

func (h *V1Handler) createOrganisation(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser) {
	var req models.CreateOrganisationRequest
	if err := utils.ParseJSONRequest(r, &req); err != nil {
		utils.RespondWithFailure(w, http.StatusBadRequest, "Bad request", "Invalid request body")
		return
	}

	if errs := models.ValidateCreateOrganisationRequest(&req); len(errs) > 0 {
		utils.RespondWithFieldErrors(w, errs)
		return
	}

	organisation, err := h.organisationService.CreateOrganisation(r.Context(), user.UserID, &req)
	if err != nil {
		slog.Error("Error creating organisation", "error", err, "userId", user.UserID)
		utils.RespondWithFailure(w, http.StatusInternalServerError, "Bad request", "Internal server error")
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "Organisation created successfully", organisation)
}

func (h *V1Handler) addUserToOrganisation(w http.ResponseWriter, r *http.Request, orgId string) {
	var req models.AddOrganisationUserRequest
	if err := utils.ParseJSONRequest(r, &req); err != nil {
		utils.RespondWithFailure(w, http.StatusBadRequest, "Bad request", "Invalid request body")
		return
	}

	if err := h.organisationService.AddUserToOrganisation(r.Context(), orgId, req.UserID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrOrganisationNotFound) {
			utils.RespondWithFailure(w, http.StatusNotFound, "Bad request", "User or Organisation not found")
			return
		}
		slog.Error("Error adding user to organisation", "error", err, "orgId", orgId, "userId", req.UserID)
		utils.RespondWithFailure(w, http.StatusInternalServerError, "Bad request", "Internal server error")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "User added to organisation successfully", nil)
}

// User handlers

func (h *V1Handler) getUserDetails(w http.ResponseWriter, r *http.Request, user *models.AuthenticatedUser, targetId string) {
	if !uuidPattern.MatchString(targetId) {
		utils.RespondWithFailure(w, http.StatusUnprocessableEntity, "Bad request", "Invalid userId format")
		return
	}

	profile, err := h.userService.GetUserProfile(r.Context(), user.UserID, targetId)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			utils.RespondWithFailure(w, http.StatusNotFound, "Bad request", "User not found")
		case errors.Is(err, services.ErrForbidden):
			utils.RespondWithFailure(w, http.StatusForbidden, "Bad request", "Unauthorized")
		default:
			slog.Error("Error fetching user details", "error", err, "targetId", targetId)
			utils.RespondWithFailure(w, http.StatusInternalServerError, "Bad request", "Internal server error")
		}
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "User details fetched successfully", profile)
}
