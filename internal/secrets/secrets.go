// Package secrets resolves the service credential from AWS Secrets Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skybooking/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

var ErrEmptySecret = errors.New("secrets: secret has no string value")

// SecretsManagerAPI is the subset of *secretsmanager.Client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type Resolver struct {
	client SecretsManagerAPI
}

// NewResolver loads the default AWS credential chain. An empty region
// falls back to AWS_REGION and the shared config.
func NewResolver(ctx context.Context, region string) (*Resolver, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewResolverWithClient(secretsmanager.NewFromConfig(cfg)), nil
}

func NewResolverWithClient(client SecretsManagerAPI) *Resolver {
	return &Resolver{client: client}
}

func (r *Resolver) Resolve(ctx context.Context, secretID string) (string, error) {
	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", secretID, err)
	}
	value := aws.ToString(out.SecretString)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, secretID)
	}
	return value, nil
}

// Credential returns the inline credential, or fetches it when a secret id is set.
func Credential(ctx context.Context, r *Resolver, inline, secretID string) (string, error) {
	if secretID == "" {
		return inline, nil
	}
	if r == nil {
		return "", fmt.Errorf("secrets: no resolver for secret %s", secretID)
	}
	return r.Resolve(ctx, secretID)
}

// IdentityCredential returns the credential an identity authenticates with.
// AWS is only contacted when identity.credential_secret_id is set.
func IdentityCredential(ctx context.Context, identity config.IdentityConfig) (string, error) {
	return identityCredential(ctx, identity, NewResolver)
}

func identityCredential(ctx context.Context, identity config.IdentityConfig, newResolver func(context.Context, string) (*Resolver, error)) (string, error) {
	if identity.CredentialSecretID == "" {
		return identity.Credential, nil
	}
	resolver, err := newResolver(ctx, identity.AWSRegion)
	if err != nil {
		return "", err
	}
	return Credential(ctx, resolver, identity.Credential, identity.CredentialSecretID)
}
