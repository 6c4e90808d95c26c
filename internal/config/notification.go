package config

type NotificationConfig struct {
	// Provider is "sns" to publish booking events to an SNS topic, or "log".
	Provider string        `yaml:"provider"`
	AWS      *AWSSNSConfig `yaml:"aws"`
}

type AWSSNSConfig struct {
	Region   string `yaml:"region"`
	TopicARN string `yaml:"topic_arn"`
}

func loadNotificationConfig() *NotificationConfig {
	return &NotificationConfig{
		Provider: getEnv("NOTIFICATION_PROVIDER", "log"),
		AWS: &AWSSNSConfig{
			Region:   getEnv("AWS_REGION", "us-east-1"),
			TopicARN: getEnv("AWS_SNS_BOOKING_TOPIC_ARN", ""),
		},
	}
}
