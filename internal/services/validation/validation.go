package validation

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ShiraazMoollatjie/goluhn"
	"github.com/go-playground/validator/v10"
)

const (
	orderNumberLength = 12
	pickupCodeDigits  = 4
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a request model against its `validate` tags.
func Struct(model any) error {
	return validate.Struct(model)
}

func LuhnValidate(number string) error {
	return goluhn.Validate(number)
}

// GenerateOrderNumber returns a numeric order number ending in a Luhn check digit.
func GenerateOrderNumber() string {
	return goluhn.Generate(orderNumberLength)
}

// GeneratePickupCode returns a zero-padded numeric code the driver has to present at pickup.
func GeneratePickupCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < pickupCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("cannot generate pickup code: %w", err)
	}

	return fmt.Sprintf("%0*d", pickupCodeDigits, n.Int64()), nil
}
