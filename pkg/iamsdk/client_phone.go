package iamsdk

import (
	"context"
	"net/http"
)

// Phone/OTP flow. All operations prefer field-level validation detail in
// errors: malformed phone numbers and wrong OTP codes are the dominant
// failure mode here.

// phoneRequest is the wire shape of phone-only requests.
type phoneRequest struct {
	Phone string `json:"phone"`
}

// otpRequest is the wire shape of phone+code requests.
type otpRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// SendOTP asks the service to send a one-time code to the phone number.
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/send-otp", phoneRequest{Phone: phone}, nil, requestOpts{
		name:         "send_otp",
		fallback:     "failed to send OTP",
		preferDetail: true,
	})
}

// LoginWithPhone authenticates with a phone number and a previously sent OTP
// code. Token handling matches Login: success stores the token, failure
// leaves the current token untouched.
func (c *Client) LoginWithPhone(ctx context.Context, req PhoneLoginRequest) (*AuthResult, error) {
	var payload loginPayload
	err := c.doJSON(ctx, http.MethodPost, "/auth/login-with-phone", req, &payload, requestOpts{
		name:         "login_with_phone",
		fallback:     "phone login failed",
		preferDetail: true,
	})
	if err != nil {
		return nil, err
	}

	res := newAuthResult(payload)
	c.setToken(res.Token)
	return res, nil
}

// VerifyPhone starts phone-number verification for the current user by
// sending an OTP to the number. Sent authenticated when a current token is
// set.
func (c *Client) VerifyPhone(ctx context.Context, phone string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/verify-phone", phoneRequest{Phone: phone}, nil, requestOpts{
		name:         "verify_phone",
		fallback:     "phone verification failed",
		preferDetail: true,
		token:        c.Token(),
	})
}

// ConfirmPhoneVerification completes phone-number verification with the OTP
// code the user received.
func (c *Client) ConfirmPhoneVerification(ctx context.Context, phone, otp string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/confirm-phone-verification", otpRequest{Phone: phone, OTP: otp}, nil, requestOpts{
		name:         "confirm_phone_verification",
		fallback:     "phone verification confirmation failed",
		preferDetail: true,
		token:        c.Token(),
	})
}
