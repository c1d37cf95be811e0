package env

const (
	// Prefix is the prefix for all service ENV variables
	Prefix = "PREMIUMS"

	// DBURLSuffix is the ENV variable suffix for the DB connection string
	DBURLSuffix = "_DB_URL"

	// XEAccountIDSuffix is the ENV variable suffix for the XE API account ID
	XEAccountIDSuffix = "_XE_ACCOUNT_ID"

	// XEAPIKeySuffix is the ENV variable suffix for the XE API key
	XEAPIKeySuffix = "_XE_API_KEY"

	// CoinAPIKeySuffix is the ENV variable suffix for the CoinAPI key
	CoinAPIKeySuffix = "_COINAPI_KEY"
)
