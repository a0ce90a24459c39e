package paypal

import (
	"strings"
)

// Wire types of the Orders v2 API. Only the fields the gateway reads or
// sends are modelled.

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
	PaymentSource *paymentSource `json:"payment_source,omitempty"`
}

type purchaseUnit struct {
	ReferenceID string    `json:"reference_id,omitempty"`
	Description string    `json:"description,omitempty"`
	CustomID    string    `json:"custom_id,omitempty"`
	Amount      *amount   `json:"amount,omitempty"`
	Payments    *payments `json:"payments,omitempty"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paymentSource struct {
	PayPal *paypalSource `json:"paypal,omitempty"`
}

type paypalSource struct {
	EmailAddress      string             `json:"email_address,omitempty"`
	Name              *payerName         `json:"name,omitempty"`
	ExperienceContext *experienceContext `json:"experience_context,omitempty"`
}

type payerName struct {
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
}

type experienceContext struct {
	BrandName          string `json:"brand_name,omitempty"`
	ReturnURL          string `json:"return_url,omitempty"`
	CancelURL          string `json:"cancel_url,omitempty"`
	UserAction         string `json:"user_action,omitempty"`
	ShippingPreference string `json:"shipping_preference,omitempty"`
}

type orderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Links         []link         `json:"links"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

type payments struct {
	Captures []capture `json:"captures,omitempty"`
}

type capture struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Amount *amount `json:"amount,omitempty"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (e apiError) String() string {
	parts := make([]string, 0, 3)
	if e.Name != "" {
		parts = append(parts, e.Name)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	for _, d := range e.Details {
		if d.Description != "" {
			parts = append(parts, d.Issue+": "+d.Description)
		} else if d.Issue != "" {
			parts = append(parts, d.Issue)
		}
	}
	return strings.Join(parts, ": ")
}

func (o *orderResponse) approvalURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}
	return ""
}

// captureID returns the first capture record id of the first purchase unit.
func (o *orderResponse) captureID() string {
	if len(o.PurchaseUnits) == 0 {
		return ""
	}
	p := o.PurchaseUnits[0].Payments
	if p == nil || len(p.Captures) == 0 {
		return ""
	}
	return p.Captures[0].ID
}

func (o *orderResponse) referenceID() string {
	if len(o.PurchaseUnits) == 0 {
		return ""
	}
	return o.PurchaseUnits[0].ReferenceID
}

func splitName(full string) *payerName {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return nil
	case 1:
		return &payerName{GivenName: fields[0]}
	default:
		return &payerName{
			GivenName: strings.Join(fields[:len(fields)-1], " "),
			Surname:   fields[len(fields)-1],
		}
	}
}
