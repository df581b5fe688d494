package cmd

type Config struct {
	Env           string
	HTTPPort      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	AmqpURL       string
	JWTSecret     string
	SweepSchedule string
	DeliveryFee   int64
}
