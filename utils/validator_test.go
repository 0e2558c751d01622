package utils

import "testing"

type sampleReq struct {
	Name     string `validate:"required,nameok"`
	Email    string `validate:"required,emailok"`
	Password string `validate:"required,pwdmin"`
	Confirm  string `validate:"eqfield=Password"`
	DeptID   uint   `validate:"required"`
	Approve  *bool  `validate:"required"`
}

func validSample() sampleReq {
	ok := true
	return sampleReq{
		Name:     "Site Foreman",
		Email:    "foreman@example.com",
		Password: "longenough",
		Confirm:  "longenough",
		DeptID:   3,
		Approve:  &ok,
	}
}

func TestValidateStructAccepts(t *testing.T) {
	req := validSample()
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

func TestValidateStructRequiredString(t *testing.T) {
	req := validSample()
	req.Name = ""
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestValidateStructRequiredUint(t *testing.T) {
	req := validSample()
	req.DeptID = 0
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for zero department id")
	}
}

func TestValidateStructRequiredPointer(t *testing.T) {
	req := validSample()
	req.Approve = nil
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for nil approve")
	}
	no := false
	req.Approve = &no
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("explicit false must satisfy required, got %v", err)
	}
}

func TestValidateStructEmail(t *testing.T) {
	req := validSample()
	req.Email = "not-an-email"
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for malformed email")
	}
}

func TestValidateStructPasswordLength(t *testing.T) {
	req := validSample()
	req.Password = "short"
	req.Confirm = "short"
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestValidateStructEqField(t *testing.T) {
	req := validSample()
	req.Confirm = "different1"
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for mismatched confirmation")
	}
}
