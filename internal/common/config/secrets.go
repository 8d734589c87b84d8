package config

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMGetter はSSMパラメータストアからの取得を抽象化します
type SSMGetter interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// secretEnvNames は SSMパラメータ名を保持する環境変数と、上書き対象の設定項目の対応です
var secretEnvNames = []string{
	"SSM_RAKUTEN_APPID",
	"SSM_RAKUTEN_AFID",
	"SSM_GOOGLE_MAP_API_KEY",
}

// LoadSecrets はSSMパラメータストアから認証情報を取得し、設定を上書きします
// パラメータ名の環境変数が1つも設定されていない場合は何もしません
func (c *Config) LoadSecrets(ctx context.Context, ssmc SSMGetter) error {
	reqNames := make([]string, 0, len(secretEnvNames))
	lookup := make(map[string]string)

	for _, envName := range secretEnvNames {
		reqName := os.Getenv(envName)
		if reqName == "" {
			continue
		}

		reqNames = append(reqNames, reqName)
		lookup[reqName] = envName
	}

	if len(reqNames) == 0 {
		return nil
	}

	resp, err := ssmc.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          reqNames,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to get ssm parameters: %w", err)
	} else if len(resp.InvalidParameters) > 0 {
		return fmt.Errorf("ssm invalid parameters: %v", resp.InvalidParameters)
	}

	for _, p := range resp.Parameters {
		value := aws.ToString(p.Value)
		switch lookup[aws.ToString(p.Name)] {
		case "SSM_RAKUTEN_APPID":
			c.Rakuten.ApplicationID = value
		case "SSM_RAKUTEN_AFID":
			c.Rakuten.AffiliateID = value
		case "SSM_GOOGLE_MAP_API_KEY":
			c.Routing.APIKey = value
		}
	}

	return nil
}
