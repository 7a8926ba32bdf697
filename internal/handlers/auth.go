package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/medvoyage/lead-service/internal/config"
	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/services"
	"github.com/medvoyage/lead-service/internal/utils"
)

const (
	contextKeyUserID = "user_id"
	contextKeyEmail  = "user_email"
	contextKeyRole   = "user_role"
	contextKeyName   = "user_name"
)

// Authenticator validates bearer tokens and resolves the caller's role.
type Authenticator struct {
	client *casdoorsdk.Client
	logger utils.Logger
}

func NewAuthenticator(cfg config.CasdoorConfig, logger utils.Logger) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &Authenticator{client: client, logger: logger}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity on the gin context.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.parseToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing or invalid access token",
			})
			return
		}

		a.storeIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a token is present but
// lets anonymous requests through. The public questionnaire uses this to
// prefill details for signed-in visitors.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := a.parseToken(c); ok {
			a.storeIdentity(c, claims)
		}
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after
// RequireAuth.
func (a *Authenticator) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
	}
}

func (a *Authenticator) storeIdentity(c *gin.Context, claims *casdoorsdk.Claims) {
	c.Set(contextKeyUserID, claims.User.Id)
	c.Set(contextKeyEmail, claims.User.Email)
	c.Set(contextKeyRole, roleFromClaims(claims))
	name := claims.User.DisplayName
	if name == "" {
		name = claims.User.Name
	}
	c.Set(contextKeyName, name)
}

func (a *Authenticator) parseToken(c *gin.Context) (*casdoorsdk.Claims, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}

	claims, err := a.client.ParseJwtToken(token)
	if err != nil {
		a.logger.Warn("Rejected invalid access token", "remote_addr", c.ClientIP(), "error", err)
		return nil, false
	}
	return claims, true
}

// roleFromClaims maps the identity provider's role assignment onto the
// service's roles. Unknown or missing roles fall back to patient, the
// least privileged.
func roleFromClaims(claims *casdoorsdk.Claims) models.UserRole {
	for _, role := range claims.User.Roles {
		switch models.UserRole(role.Name) {
		case models.RoleAdmin:
			return models.RoleAdmin
		case models.RoleHospital:
			return models.RoleHospital
		}
	}
	return models.RolePatient
}

// CurrentActor assembles the service-layer actor from the gin context. A
// request that never passed auth middleware yields a zero Actor.
func CurrentActor(c *gin.Context) services.Actor {
	actor := services.Actor{}
	if v, ok := c.Get(contextKeyUserID); ok {
		actor.UserID, _ = v.(string)
	}
	if v, ok := c.Get(contextKeyEmail); ok {
		actor.Email, _ = v.(string)
	}
	if v, ok := c.Get(contextKeyRole); ok {
		if role, isRole := v.(models.UserRole); isRole {
			actor.Role = role
		}
	}
	return actor
}

// CurrentDisplayName returns the signed-in caller's display name, empty for
// anonymous requests.
func CurrentDisplayName(c *gin.Context) string {
	if v, ok := c.Get(contextKeyName); ok {
		name, _ := v.(string)
		return name
	}
	return ""
}
