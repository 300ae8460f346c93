/*
Package authsdk holds the wire types of the Qayimli accounts API and a small
Go client for it.

The same request types are decoded and validated by the server handlers, so a
request that passes Validate on the client is accepted by the server's input
checks.

	client := authsdk.NewClient("https://accounts.example.com")

	user, err := client.Login(ctx, authsdk.LoginRequest{
		Email:    "sara@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeUnauthenticated {
			// wrong email or password
		}
		return err
	}

	me, err := client.CurrentUser(ctx, user.Token)

Password resets are two calls. ForgotPassword mails a link containing a one
hour reset token, and ResetPassword exchanges that token for a new password:

	err := client.ForgotPassword(ctx, "sara@example.com")
	// ... user follows the emailed link ...
	err = client.ResetPassword(ctx, authsdk.ResetPasswordRequest{
		Token:       tokenFromLink,
		NewPassword: "battery-staple",
	})

Every non-2xx response is returned as *APIError.
*/
package authsdk
