// Package user serves /api/users to administrators.
package user

import (
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	userRepo "warehouse.GO/model/repository/user"
)

func init() {
	api.RegisterModule(RegisterUserRoutes)
}

type createRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=128"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"max=100"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Role     string `json:"role" validate:"omitempty,oneof=admin manager staff"`
	IsActive *bool  `json:"isActive"`
}

type updateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50,alphanum"`
	Email    *string `json:"email" validate:"omitempty,email,max=128"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin manager staff"`
	IsActive *bool   `json:"isActive"`
}

func RegisterUserRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/users", auth.RequireRoles(entity.RoleAdmin))
	repo := userRepo.NewUserRepository(db)

	ensureFree := func(username, email string, except uint) error {
		field, err := repo.Taken(username, email, except)
		if err != nil {
			return err
		}
		switch field {
		case "username":
			return apperror.Duplicate("Username already exists")
		case "email":
			return apperror.Duplicate("Email already exists")
		}
		return nil
	}

	g.GET("", func(c echo.Context) error {
		var f userRepo.Filter
		if err := api.Query(c, &f); err != nil {
			return err
		}
		items, total, err := repo.List(f)
		if err != nil {
			return err
		}
		return response.Paginated(c, "", items, response.NewPagination(f.Page.Page, f.Limit, total))
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		u, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "User")
		}
		return response.OK(c, "", u)
	})

	g.POST("", func(c echo.Context) error {
		var in createRequest
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		u := &entity.User{
			Username: strings.TrimSpace(in.Username),
			Email:    strings.ToLower(strings.TrimSpace(in.Email)),
			Password: in.Password,
			FullName: in.FullName,
			Phone:    in.Phone,
			Role:     entity.Role(in.Role),
			IsActive: true,
		}
		if u.Role == "" {
			u.Role = entity.RoleStaff
		}
		if err := ensureFree(u.Username, u.Email, 0); err != nil {
			return err
		}
		if err := repo.Create(u); err != nil {
			return apperror.FromDB(err, "User")
		}
		if in.IsActive != nil && !*in.IsActive {
			u.IsActive = false
			if err := repo.Save(u); err != nil {
				return err
			}
		}
		return response.Created(c, "User created", u)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		var in updateRequest
		if err := validate.Bind(c, &in); err != nil {
			return err
		}
		u, err := repo.FindByID(id)
		if err != nil {
			return apperror.FromDB(err, "User")
		}
		me := auth.CurrentUser(c)
		if me.ID == id && ((in.Role != nil && entity.Role(*in.Role) != me.Role) || (in.IsActive != nil && !*in.IsActive)) {
			return apperror.BadRequest("You cannot change your own role or deactivate yourself")
		}
		if in.Username != nil {
			u.Username = strings.TrimSpace(*in.Username)
		}
		if in.Email != nil {
			u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
		}
		if in.Username != nil || in.Email != nil {
			if err := ensureFree(u.Username, u.Email, u.ID); err != nil {
				return err
			}
		}
		if in.FullName != nil {
			u.FullName = *in.FullName
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.Role != nil {
			u.Role = entity.Role(*in.Role)
		}
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
		if in.Password != nil {
			// the hook hashes it and the old refresh token stops working
			u.Password = *in.Password
			u.RefreshToken = ""
		}
		if err := repo.Save(u); err != nil {
			return apperror.FromDB(err, "User")
		}
		return response.OK(c, "User updated", u)
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ID(c)
		if err != nil {
			return err
		}
		if auth.CurrentUser(c).ID == id {
			return apperror.BadRequest("You cannot delete your own account")
		}
		if err := repo.Delete(id); err != nil {
			if apperror.IsForeignKey(err) {
				return apperror.Conflict("User owns documents or movements, deactivate it instead")
			}
			return apperror.FromDB(err, "User")
		}
		return response.OK(c, "User deleted", nil)
	})
}
