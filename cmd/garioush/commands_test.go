package main

import (
	"testing"

	"github.com/boula1997/garioush/internal/model"
)

func TestProfileUpdateRequestKeepsUnsetFields(t *testing.T) {
	current := &model.ProfileSnapshot{
		FullName: "Demo User",
		Email:    "demo@garioush.app",
		Phone:    "+201112223334",
	}

	if err := profileUpdateCmd.Flags().Set("email", "new@garioush.app"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	defer func() {
		profileUpdateCmd.Flags().Set("email", "")
		profileUpdateCmd.Flag("email").Changed = false
	}()

	req := profileUpdateRequest(profileUpdateCmd, current)

	if req.Email != "new@garioush.app" {
		t.Fatalf("email = %q, want %q", req.Email, "new@garioush.app")
	}
	if req.FullName != current.FullName {
		t.Fatalf("fullname = %q, want unchanged %q", req.FullName, current.FullName)
	}
	if req.Phone != current.Phone {
		t.Fatalf("phone = %q, want unchanged %q", req.Phone, current.Phone)
	}
}

func TestProfileUpdateRequestAllFlagsSet(t *testing.T) {
	current := &model.ProfileSnapshot{
		FullName: "Demo User",
		Email:    "demo@garioush.app",
		Phone:    "+201112223334",
	}

	for name, value := range map[string]string{
		"fullname": "Renamed User",
		"email":    "renamed@garioush.app",
		"phone":    "+209998887776",
	} {
		if err := profileUpdateCmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set flag %s: %v", name, err)
		}
	}
	defer func() {
		for _, name := range []string{"fullname", "email", "phone"} {
			profileUpdateCmd.Flags().Set(name, "")
			profileUpdateCmd.Flag(name).Changed = false
		}
	}()

	req := profileUpdateRequest(profileUpdateCmd, current)

	if req.FullName != "Renamed User" || req.Email != "renamed@garioush.app" || req.Phone != "+209998887776" {
		t.Fatalf("unexpected request: %+v", req)
	}
}
