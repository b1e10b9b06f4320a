package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type parameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSecrets fills the Alpaca credentials from AWS SSM Parameter Store
// when secrets.source is "ssm". Values already set from the environment win.
func ResolveSecrets(ctx context.Context, cfg *Config) error {
	if cfg.Secrets.Source != "ssm" {
		return nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Secrets.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Secrets.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	return resolveSecrets(ctx, ssm.NewFromConfig(awsCfg), cfg)
}

func resolveSecrets(ctx context.Context, client parameterGetter, cfg *Config) error {
	if cfg.Alpaca.APIKey == "" && cfg.Secrets.AlpacaKeyParam != "" {
		v, err := getParameter(ctx, client, cfg.Secrets.AlpacaKeyParam)
		if err != nil {
			return err
		}
		cfg.Alpaca.APIKey = v
	}
	if cfg.Alpaca.APISecret == "" && cfg.Secrets.AlpacaSecretParam != "" {
		v, err := getParameter(ctx, client, cfg.Secrets.AlpacaSecretParam)
		if err != nil {
			return err
		}
		cfg.Alpaca.APISecret = v
	}
	return nil
}

func getParameter(ctx context.Context, client parameterGetter, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm parameter %s: %w", name, errors.New("empty value"))
	}
	return *out.Parameter.Value, nil
}
