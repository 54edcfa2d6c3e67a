package main

import (
	"fmt"
	"os"

	"github.com/lk2023060901/ai-notebook-backend/internal/conf"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "notebook",
		Short:         "Document-grounded study assistant backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "config file path")

	root.AddCommand(serveCMD(), templateCMD())
	err := root.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 加载配置并初始化全局日志
func setup() (*conf.Config, *logger.Logger, error) {
	path := configFile
	if _, err := os.Stat(path); err != nil {
		// 配置文件可选，缺失时只用默认值和环境变量
		path = ""
	}

	config, err := conf.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)

	return config, log, nil
}
