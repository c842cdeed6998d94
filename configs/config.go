package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// Platform holds the credentials for the social network integrations.
// Everything is injected from here so adapters never read the environment
// themselves.
type Platform struct {
	FacebookPageID      string
	FacebookAccessToken string
	InstagramUserID     string
	InstagramToken      string
	LinkedinToken       string
	LinkedinAuthorURN   string
	WhatsappToken       string
	TiktokAPIURL        string
}

type OpenAI struct {
	APIKey string
	Model  string
}

type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	R2                 R2
	Platform           Platform
	OpenAI             OpenAI
	SecretKey          string
	CookieName         string
}

func LoadConfig() *Config {
	return &Config{
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/callback"),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", "127.0.0.1:6379"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Platform: Platform{
			FacebookPageID:      getEnv("FACEBOOK_PAGE_ID", ""),
			FacebookAccessToken: getEnv("FACEBOOK_PAGE_ACCESS_TOKEN", ""),
			InstagramUserID:     getEnv("INSTAGRAM_USER_ID", ""),
			InstagramToken:      getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
			LinkedinToken:       getEnv("LINKEDIN_ACCESS_TOKEN", ""),
			LinkedinAuthorURN:   getEnv("LINKEDIN_AUTHOR_URN", ""),
			WhatsappToken:       getEnv("WHATSAPP_TOKEN", ""),
			TiktokAPIURL:        getEnv("TIKTOK_API_URL", "http://localhost:8001"),
		},
		OpenAI: OpenAI{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "redes_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
