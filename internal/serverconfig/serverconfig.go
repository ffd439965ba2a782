package serverconfig

import (
	"flag"
	"os"
	"strconv"
)

type ConfigStore struct {
	FlagRunAddr  string
	FlagDatabase string
	FlagBotToken string
	FlagAdminID  int64
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		FlagRunAddr:  "",
		FlagDatabase: "",
		FlagBotToken: "",
		FlagAdminID:  0,
	}
}

// ParseFlags reads the command line and lets environment variables override
// the result, so containers can configure everything without arguments.
func (configStore *ConfigStore) ParseFlags() {
	flag.StringVar(&configStore.FlagRunAddr, "a", ":8080", "address and port for the metrics server")
	flag.StringVar(&configStore.FlagDatabase, "d", "", "data for connecting to db (empty runs in-memory)")
	flag.StringVar(&configStore.FlagBotToken, "t", "", "bot API token")
	flag.Int64Var(&configStore.FlagAdminID, "i", 0, "administrator chat id")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		configStore.FlagRunAddr = envRunAddr
	}

	if envDatabase := os.Getenv("DATABASE_URI"); envDatabase != "" {
		configStore.FlagDatabase = envDatabase
	}

	if envBotToken := os.Getenv("BOT_TOKEN"); envBotToken != "" {
		configStore.FlagBotToken = envBotToken
	}

	if envAdminID := os.Getenv("ADMIN_ID"); envAdminID != "" {
		if adminID, err := strconv.ParseInt(envAdminID, 10, 64); err == nil {
			configStore.FlagAdminID = adminID
		}
	}
}
