package employee

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/taleemhub/backoffice/core"
)

func Test_validatePassword_common(t *testing.T) {
	if len(commonPasswords) == 0 {
		t.Fatal("assets/common-passwords.txt.gz was not loaded")
	}

	newEmp := func(pwd string) NewEmployee {
		return NewEmployee{
			Name:            "Awa",
			Username:        "awamaiga",
			Email:           "awa@test.tl",
			Password:        pwd,
			PasswordConfirm: pwd,
		}
	}

	// passes complexity but sits in the common list (case-insensitive)
	err := core.Validate.Struct(newEmp("P@ssw0rd"))
	if err == nil {
		t.Fatal("a common password should be rejected")
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want validator.ValidationErrors", err)
	}
	var found bool
	for _, fe := range errs {
		if fe.Tag() == pwdNoCommonTag {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want tag %q", errs, pwdNoCommonTag)
	}

	if err := core.Validate.Struct(newEmp("Str0ng&Unique")); err != nil {
		t.Errorf("a strong password should pass, got %v", err)
	}
}
