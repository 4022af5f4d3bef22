package cmd

import (
	"bytes"
	"strings"
	"testing"

	"warehouse.GO/core/apperror"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/testdb"
)

func TestSeed_Idempotent(t *testing.T) {
	db := testdb.Open(t)
	opts := SeedOptions{AdminUsername: "admin", AdminEmail: "admin@example.com", AdminPassword: "secret1"}

	res, err := Seed(db, opts)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Users != 1 || res.Categories != len(seedCategories) || res.Warehouses != 1 {
		t.Errorf("first run = %+v", res)
	}
	res, err = Seed(db, opts)
	if err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if res.Users != 0 || res.Categories != 0 || res.Warehouses != 0 {
		t.Errorf("second run = %+v, want nothing created", res)
	}

	var w entity.Warehouse
	db.Where("code = ?", "MAIN").First(&w)
	if !w.HasLocation("A-02") || w.ManagerID == nil {
		t.Errorf("warehouse = %+v", w)
	}
	var admin entity.User
	db.Where("username = ?", "admin").First(&admin)
	if admin.Role != entity.RoleAdmin || !admin.CheckPassword("secret1") {
		t.Errorf("admin = %+v", admin)
	}
}

func TestCreateUser(t *testing.T) {
	db := testdb.Open(t)
	v := validate.New("VN")

	_, err := CreateUser(db, v, NewUser{Username: "x", Email: "bad", Password: "1", Role: "boss"})
	if ae := apperror.As(err); ae.Code != apperror.CodeValidation || len(ae.Fields) != 4 {
		t.Fatalf("err = %v, want 4 validation fields", err)
	}

	u, err := CreateUser(db, v, NewUser{Username: "picker1", Email: " Picker@Example.com ", Password: "secret1", Role: "staff"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "picker@example.com" || !u.IsActive {
		t.Errorf("user = %+v", u)
	}

	_, err = CreateUser(db, v, NewUser{Username: "picker1", Email: "other@example.com", Password: "secret1", Role: "staff"})
	if ae := apperror.As(err); ae.Code != apperror.CodeDuplicateKey {
		t.Errorf("err = %v, want DUPLICATE_KEY", err)
	}
}

func TestGraphQLSchemaCommand(t *testing.T) {
	out := &bytes.Buffer{}
	graphqlSchemaCmd.SetOut(out)
	graphqlSchemaCmd.Run(graphqlSchemaCmd, nil)
	if !strings.Contains(out.String(), "type Query") {
		t.Errorf("schema output = %q", out.String())
	}
}
