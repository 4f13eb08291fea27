package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/infras/jwt"
	"appointer/infras/otel"
	"appointer/permissions"
	"appointer/shared"
	"appointer/shared/constant"
	"appointer/shared/failure"
	"appointer/transport/http/response"
)

type internalKey struct{}

// Auth authenticates callers.
type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

// Role authorizes authenticated callers against the permission table.
type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

func internal(ctx context.Context) bool {
	ok, _ := ctx.Value(internalKey{}).(bool)

	return ok
}

// route resolves the registered pattern, e.g. /v1/bookings/{id}.
func route(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return r.URL.Path
	}

	return rctx.Routes.Find(chi.NewRouteContext(), r.Method, r.URL.Path)
}

func (m *authRoleImpl) lookup(r *http.Request) permissions.Permission {
	if m.permission == nil {
		return permissions.Permission{}
	}

	return m.permission.FindPermissions(route(r), r.Method)
}

// Auth validates the bearer access token and places the caller in the
// context. Public routes and internal callers pass through.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		if internal(ctx) || m.lookup(r).Skip {
			scope.End()
			next.ServeHTTP(w, r)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.route":      route(r),
			"http.method":     r.Method,
		})

		claims, err := m.authenticate(r)
		if err != nil {
			scope.TraceError(err)
			scope.End()
			response.WithError(w, err)

			return
		}

		ctx = shared.WithActor(r.Context(), shared.Actor{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		scope.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *authRoleImpl) authenticate(r *http.Request) (*jwt.Claims, error) {
	token, err := jwt.ExtractTokenFromHeader(r.Header.Get(constant.RequestHeaderAuthorization))
	if err != nil {
		return nil, failure.Unauthorized(err.Error())
	}

	claims, err := m.jwtService.ValidateToken(token, jwt.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			return nil, failure.Unauthorized("token has expired")
		case errors.Is(err, jwt.ErrInvalidClaim):
			return nil, failure.Unauthorized("invalid token claims")
		default:
			return nil, failure.Unauthorized("invalid token")
		}
	}

	if claims.UserID == constant.Empty || claims.Role == constant.Empty {
		log.Warn().Str("token_id", claims.TokenID).Msg("access token without subject or role")

		return nil, failure.Unauthorized("invalid token claims")
	}

	return claims, nil
}

// RBAC rejects callers whose role is not listed for the route. Routes without
// a role list are open to any authenticated caller.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "rbac.middleware")

		permission := m.lookup(r)
		if internal(r.Context()) || permission.Skip || len(permission.Permissions) == 0 {
			scope.End()
			next.ServeHTTP(w, r)

			return
		}

		role := shared.ActorFromContext(r.Context()).Role
		if !slices.Contains(permission.Permissions, role) {
			scope.SetAttributes(map[string]any{
				"user_role":     role,
				"allowed_roles": permission.Permissions,
			})
			scope.TraceError(failure.ForbiddenError)
			scope.End()
			response.WithError(w, failure.ForbiddenError)

			return
		}

		scope.End()
		next.ServeHTTP(w, r)
	})
}

// APIKey authenticates service-to-service calls. A matching key acts as the
// internal administrator; no key falls through to token auth.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "api_key.middleware")

		key := r.Header.Get(constant.RequestHeaderAPIKey)
		if key == constant.Empty {
			scope.SetAttribute("http.source", "client")
			scope.End()
			next.ServeHTTP(w, r)

			return
		}

		scope.SetAttribute("http.source", "internal")

		if m.cfg.App.APIKey == constant.Empty || key != m.cfg.App.APIKey {
			scope.TraceError(failure.ForbiddenError)
			scope.End()
			response.WithError(w, failure.ForbiddenError)

			return
		}

		ctx := shared.WithActor(r.Context(), shared.Actor{UserID: constant.SystemInternal, Role: constant.RoleAdmin})
		ctx = context.WithValue(ctx, internalKey{}, true)

		scope.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
