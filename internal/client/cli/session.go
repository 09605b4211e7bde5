package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) login(ctx context.Context) {
	userID, err := GetSimpleText(a.reader, "User id", os.Stdout)
	if err != nil || userID == "" {
		fmt.Println("User id is required")
		return
	}

	providerToken, err := GetSecret("Provider token", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read token:", err)
		return
	}

	if err := a.session.SignIn(ctx, userID, providerToken); err != nil {
		fmt.Println("Login failed:", err)
		return
	}

	a.userID = userID
	fmt.Printf("Logged in as %s\n", userID)
}

func (a *App) logout(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	if err := a.session.SignOut(ctx, a.userID); err != nil {
		fmt.Println("Logout failed:", err)
		return
	}

	a.userID = ""
	fmt.Println("Logged out")
}
