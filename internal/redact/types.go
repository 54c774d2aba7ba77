// Package redact implements the PII extractor (C4) and redactor (C5): it
// turns raw content plus a list of privacy entities into text with every
// entity value replaced by a canonical, non-reversible redaction token.
package redact

import "github.com/OpenBMB/privacyguard/internal/model"

// canonicalTypes maps free-form extracted type labels (case-insensitive,
// spaces or hyphens in place of underscores) to the closed RedactionType
// set. An unrecognized type still gets redacted — it is upper-cased and
// underscored, just not drawn from the canonical table.
var canonicalTypes = map[string]model.RedactionType{
	"name": model.TypeName, "full_name": model.TypeName, "person": model.TypeName,
	"phone": model.TypePhone, "phone_number": model.TypePhone, "telephone": model.TypePhone,
	"email": model.TypeEmail, "email_address": model.TypeEmail,
	"address": model.TypeAddress, "home_address": model.TypeAddress, "location": model.TypeAddress,
	"access_code": model.TypeAccessCode, "otp": model.TypeAccessCode, "verification_code": model.TypeAccessCode,
	"delivery": model.TypeDelivery, "tracking_number": model.TypeDelivery, "delivery_address": model.TypeDelivery,
	"id": model.TypeID, "id_number": model.TypeID, "passport": model.TypeID, "ssn": model.TypeID, "social_security_number": model.TypeID,
	"card": model.TypeCard, "card_number": model.TypeCard, "credit_card": model.TypeCard,
	"secret": model.TypeSecret, "password": model.TypeSecret, "api_key": model.TypeSecret, "token": model.TypeSecret, "private_key": model.TypeSecret,
	"ip": model.TypeIP, "ip_address": model.TypeIP,
	"license": model.TypeLicense, "license_plate": model.TypeLicense, "drivers_license": model.TypeLicense,
	"time": model.TypeTime,
	"date": model.TypeDate,
	"salary": model.TypeSalary, "income": model.TypeSalary,
	"amount": model.TypeAmount, "money": model.TypeAmount,
	"payment": model.TypePayment, "payment_method": model.TypePayment, "bank_account": model.TypePayment,
	"birthday": model.TypeBirthday, "date_of_birth": model.TypeBirthday, "dob": model.TypeBirthday,
}
