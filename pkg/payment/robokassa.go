// Package payment implements the payment-gateway side of order
// reconciliation. Each gateway knows its own notification field names and
// checksum formula; the services above only see the usecase.Gateway contract.
package payment

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"course-platform/pkg/utils"
)

const (
	merchantURL = "https://auth.robokassa.ru/Merchant/Index.aspx"

	invoiceField   = "InvId"
	sumField       = "OutSum"
	signatureField = "SignatureValue"
)

// Robokassa talks the Robokassa merchant protocol. The result callback is
// signed with MD5 over "OutSum:InvId:Password2"; the payment link over
// "MerchantLogin:OutSum:InvId:Password1". Weak hash, but it is the protocol.
type Robokassa struct {
	login     string
	password1 string
	password2 string
}

func NewRobokassa(config utils.PaymentConfig) *Robokassa {
	return &Robokassa{
		login:     config.MerchantLogin,
		password1: config.Password1,
		password2: config.Password2,
	}
}

// OrderID pulls the invoice id out of a result notification.
func (g *Robokassa) OrderID(fields map[string]string) (int64, bool) {
	id, err := strconv.ParseInt(fields[invoiceField], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// VerifySignature recomputes the result checksum from the notification's own
// OutSum/InvId values and compares it to the supplied SignatureValue.
// Robokassa sends the hex digest in either case, so compare uppercased, in
// constant time.
func (g *Robokassa) VerifySignature(fields map[string]string) bool {
	supplied := fields[signatureField]
	if supplied == "" {
		return false
	}

	expected := signature(fields[sumField], fields[invoiceField], g.password2)

	return subtle.ConstantTimeCompare([]byte(strings.ToUpper(supplied)), []byte(expected)) == 1
}

// PaymentURL builds the signed merchant redirect link for an order.
// cost is in the smallest currency unit; OutSum wants major units.
func (g *Robokassa) PaymentURL(orderID, cost int64) string {
	outSum := formatSum(cost)
	invID := strconv.FormatInt(orderID, 10)

	values := url.Values{}
	values.Set("MerchantLogin", g.login)
	values.Set(sumField, outSum)
	values.Set(invoiceField, invID)
	values.Set(signatureField, signature(g.login, outSum, invID, g.password1))

	return merchantURL + "?" + values.Encode()
}

func formatSum(cost int64) string {
	return fmt.Sprintf("%d.%02d", cost/100, cost%100)
}

func signature(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
