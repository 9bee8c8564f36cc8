package middleware

import (
	"context"
	"net/http"

	"stockdesk/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig validates the admin bearer token. Tokens carry the acting user in
// "sub" and the hotel scope in "hotel_id".
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// HotelScope lifts the validated token claims into the request context.
// Must run after the JWT middleware.
func HotelScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing user id in token")
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user id format")
			}

			hotelClaim, ok := claims["hotel_id"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing hotel id in token")
			}
			hotelID, err := uuid.Parse(hotelClaim)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid hotel id format")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.HotelIDKey, hotelID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
