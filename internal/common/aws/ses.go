// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of the SES client used here.
type SESAPI interface {
	GetIdentityVerificationAttributes(ctx context.Context, params *ses.GetIdentityVerificationAttributesInput, optFns ...func(*ses.Options)) (*ses.GetIdentityVerificationAttributesOutput, error)
}

type SESClient struct {
	client SESAPI
}

// NewSESClient builds a client from the default credential chain. SDK retries
// are off; callers retry on their own schedule.
func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg, func(o *ses.Options) {
		o.Retryer = awssdk.NopRetryer{}
	})}, nil
}

func NewSESClientFromAPI(api SESAPI) *SESClient {
	return &SESClient{client: api}
}

// VerifySender checks that SES may send as address, either because the
// address itself or its domain is a verified identity.
func (s *SESClient) VerifySender(ctx context.Context, address string) error {
	identities := []string{address}
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		identities = append(identities, address[at+1:])
	}

	out, err := s.client.GetIdentityVerificationAttributes(ctx, &ses.GetIdentityVerificationAttributesInput{
		Identities: identities,
	})
	if err != nil {
		return fmt.Errorf("ses identity lookup failed: %w", err)
	}

	var statuses []string
	for _, identity := range identities {
		attrs, ok := out.VerificationAttributes[identity]
		if !ok {
			continue
		}
		if attrs.VerificationStatus == types.VerificationStatusSuccess {
			return nil
		}
		statuses = append(statuses, fmt.Sprintf("%s=%s", identity, attrs.VerificationStatus))
	}
	if len(statuses) == 0 {
		return fmt.Errorf("%s is not a verified SES identity", address)
	}
	return fmt.Errorf("%s is not verified for SES (%s)", address, strings.Join(statuses, ", "))
}
