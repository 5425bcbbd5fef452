package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/skybooking/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSecretsManager struct {
	mock.Mock
}

func (m *MockSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, aws.ToString(params.SecretId))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsmanager.GetSecretValueOutput), args.Error(1)
}

func TestResolver_Resolve(t *testing.T) {
	client := &MockSecretsManager{}
	client.On("GetSecretValue", mock.Anything, "bookings/credential").
		Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("s3cr3t")}, nil)
	client.On("GetSecretValue", mock.Anything, "empty").
		Return(&secretsmanager.GetSecretValueOutput{}, nil)
	client.On("GetSecretValue", mock.Anything, "missing").
		Return(nil, errors.New("ResourceNotFoundException"))

	r := NewResolverWithClient(client)
	ctx := context.Background()

	value, err := r.Resolve(ctx, "bookings/credential")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", value)

	_, err = r.Resolve(ctx, "empty")
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = r.Resolve(ctx, "missing")
	assert.ErrorContains(t, err, "ResourceNotFoundException")
}

func TestCredential(t *testing.T) {
	ctx := context.Background()

	value, err := Credential(ctx, nil, "inline", "")
	require.NoError(t, err)
	assert.Equal(t, "inline", value)

	_, err = Credential(ctx, nil, "inline", "bookings/credential")
	assert.Error(t, err)

	client := &MockSecretsManager{}
	client.On("GetSecretValue", mock.Anything, "bookings/credential").
		Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("from-aws")}, nil)
	value, err = Credential(ctx, NewResolverWithClient(client), "inline", "bookings/credential")
	require.NoError(t, err)
	assert.Equal(t, "from-aws", value)
}

func TestIdentityCredential(t *testing.T) {
	ctx := context.Background()
	noAWS := func(context.Context, string) (*Resolver, error) {
		t.Fatal("inline credentials must not load AWS config")
		return nil, nil
	}

	value, err := identityCredential(ctx, config.IdentityConfig{Credential: "inline"}, noAWS)
	require.NoError(t, err)
	assert.Equal(t, "inline", value)

	client := &MockSecretsManager{}
	client.On("GetSecretValue", mock.Anything, "bookings/credential").
		Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("from-aws")}, nil)
	var region string
	fromClient := func(_ context.Context, r string) (*Resolver, error) {
		region = r
		return NewResolverWithClient(client), nil
	}

	value, err = identityCredential(ctx, config.IdentityConfig{
		Credential:         "inline",
		CredentialSecretID: "bookings/credential",
		AWSRegion:          "eu-west-1",
	}, fromClient)
	require.NoError(t, err)
	assert.Equal(t, "from-aws", value)
	assert.Equal(t, "eu-west-1", region)

	loadErr := errors.New("no aws credentials")
	_, err = identityCredential(ctx, config.IdentityConfig{CredentialSecretID: "x"}, func(context.Context, string) (*Resolver, error) {
		return nil, loadErr
	})
	assert.ErrorIs(t, err, loadErr)
}
