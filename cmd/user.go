package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"warehouse.GO/config"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	userRepo "warehouse.GO/model/repository/user"
)

// NewUser is the input of user:create.
type NewUser struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"max=100"`
	Role     string `json:"role" validate:"required,oneof=admin manager staff"`
}

// CreateUser validates in and inserts an active user.
func CreateUser(db *gorm.DB, v *validate.Validator, in NewUser) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := v.Validate(&in); err != nil {
		return nil, err
	}
	repo := userRepo.NewUserRepository(db)
	taken, err := repo.Taken(in.Username, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken != "" {
		return nil, apperror.Duplicate(fmt.Sprintf("%s already exists", taken))
	}
	u := &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
		Role:     entity.Role(in.Role),
		IsActive: true,
	}
	if err := repo.Create(u); err != nil {
		return nil, apperror.FromDB(err, "User")
	}
	return u, nil
}

var newUser NewUser

var userCreateCmd = &cobra.Command{
	Use:   "user:create",
	Short: "Create an active user",
	RunE: func(c *cobra.Command, args []string) error {
		db, err := OpenDB()
		if err != nil {
			return err
		}
		u, err := CreateUser(db, validate.New(config.GetConfig().PhoneRegion), newUser)
		if err != nil {
			if ae := apperror.As(err); len(ae.Fields) > 0 {
				for _, f := range ae.Fields {
					fmt.Fprintf(c.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
				}
			}
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Created %s user %s (id %d)\n", u.Role, u.Username, u.ID)
		return nil
	},
}

func init() {
	f := userCreateCmd.Flags()
	f.StringVarP(&newUser.Username, "username", "u", "", "login name")
	f.StringVarP(&newUser.Email, "email", "e", "", "email address")
	f.StringVarP(&newUser.Password, "password", "p", "", "password (6-72 characters)")
	f.StringVar(&newUser.FullName, "full-name", "", "display name")
	f.StringVarP(&newUser.Role, "role", "r", string(entity.RoleStaff), "admin, manager or staff")
	rootCmd.AddCommand(userCreateCmd)
}
