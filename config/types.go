package config

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		UploadDir    string `yaml:"uploadDir"`
		StaticDir    string `yaml:"staticDir"`
		RegistryFile string `yaml:"registryFile"`
	} `yaml:"server"`

	Security struct {
		EnableCORS  bool     `yaml:"enableCORS"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"security"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}
