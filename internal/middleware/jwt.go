package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the identity provider and injects the caller's member id and
// group membership into the request context. The provided secret must
// match the one the identity provider signs with. Handlers behind this
// middleware read the caller via `c.Get("member_id")` and
// `c.Get("group_id")`. Tokens that verify but carry no group membership
// are rejected: every operation in this service is scoped to a group.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header is "Bearer " followed by the JWT. Anything
            // else means the request carries no usable credential.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "error": "unauthenticated", "message": "missing bearer token",
                })
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse with HS256 and our secret. The callback supplies the
            // signing key and rejects any other algorithm family.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "error": "unauthenticated", "message": "invalid token",
                })
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "error": "unauthenticated", "message": "invalid claims",
                })
            }
            if claims["sub"] == nil || claims["group_id"] == nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "error": "unauthenticated", "message": "token carries no member identity",
                })
            }

            // Stash the member identity and group membership in the
            // context. Type normalization is left to the handler helpers.
            c.Set("member_id", claims["sub"])
            c.Set("group_id", claims["group_id"])
            return next(c)
        }
    }
}
