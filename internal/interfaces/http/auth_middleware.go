package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/dto"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/jwt"
)

// LocalActor clave de c.Locals con la identidad (entity.Actor) del llamador.
const LocalActor = "actor"

// AuthMiddleware valida el Bearer Token JWT y deja el entity.Actor en c.Locals.
// Un rol fuera de requester/supply/approver/admin responde 403 UNKNOWN_ROLE; un
// token sin rol pasa y lo rechaza RequireRole o el motor.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if role != "" && !entity.ValidRole(role) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "UNKNOWN_ROLE", Message: "rol desconocido: " + role})
		}
		c.Locals(LocalActor, entity.Actor{ID: userID, Role: role})
		return c.Next()
	}
}

// RequireRole deja pasar sólo a los roles indicados. Va después de AuthMiddleware.
// Un token sin rol responde 401 MISSING_ROLE.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para este recurso"})
	}
}

// GetActor identidad del llamador; vacía en rutas públicas.
func GetActor(c *fiber.Ctx) entity.Actor {
	a, _ := c.Locals(LocalActor).(entity.Actor)
	return a
}

// GetUserID ID del llamador autenticado.
func GetUserID(c *fiber.Ctx) string { return GetActor(c).ID }

// GetRole rol del llamador autenticado.
func GetRole(c *fiber.Ctx) string { return GetActor(c).Role }

func actor(c *fiber.Ctx) entity.Actor { return GetActor(c) }
