package auth

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/config"
	coreAuth "warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	authService "warehouse.GO/service/auth"
)

func init() {
	api.RegisterModule(RegisterAuthRoutes)
}

func RegisterAuthRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := authService.NewService(db, coreAuth.Tokens(), coreAuth.NewDefaultBlacklist(db), config.GetLogger())
	Routes(apiGroup, svc)
}

// Routes mounts /auth on g. Login, register and refresh-token must be in the auth skip list.
func Routes(apiGroup *echo.Group, svc *authService.Service) {
	g := apiGroup.Group("/auth")

	g.POST("/register", func(c echo.Context) error {
		var in authService.RegisterInput
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		sess, err := svc.Register(c.Request().Context(), in)
		if err != nil {
			return err
		}
		return response.Created(c, "User registered successfully", sess)
	})

	g.POST("/login", func(c echo.Context) error {
		var in authService.LoginInput
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		sess, err := svc.Login(c.Request().Context(), in)
		if err != nil {
			return err
		}
		return response.OK(c, "Login successful", sess)
	})

	g.POST("/refresh-token", func(c echo.Context) error {
		var in struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		sess, err := svc.Refresh(c.Request().Context(), in.RefreshToken)
		if err != nil {
			return err
		}
		return response.OK(c, "Token refreshed", sess)
	})

	g.POST("/logout", func(c echo.Context) error {
		if err := svc.Logout(c.Request().Context(), coreAuth.CurrentUser(c), coreAuth.CurrentClaims(c)); err != nil {
			return err
		}
		return response.OK(c, "Logged out successfully", nil)
	})

	g.GET("/me", func(c echo.Context) error {
		return response.OK(c, "", coreAuth.CurrentUser(c))
	})

	g.PUT("/profile", func(c echo.Context) error {
		var in authService.ProfileInput
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		u, err := svc.UpdateProfile(c.Request().Context(), coreAuth.CurrentUser(c), in)
		if err != nil {
			return err
		}
		return response.OK(c, "Profile updated", u)
	})

	g.PUT("/change-password", func(c echo.Context) error {
		var in authService.ChangePasswordInput
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		if err := svc.ChangePassword(c.Request().Context(), coreAuth.CurrentUser(c), coreAuth.CurrentClaims(c), in); err != nil {
			return err
		}
		return response.OK(c, "Password changed, please log in again", nil)
	})
}
