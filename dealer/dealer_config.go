package dealer

type EnvConfig struct {
	ListenAddr     string `split_words:"true" required:"true"`
	ListenPort     int    `split_words:"true" required:"true"`
	Seed           int64  `split_words:"true" default:"0"`
	DeckTtlMinutes int    `split_words:"true" default:"120"`
	Debug          bool   `split_words:"true" default:"false"`
}
