package main

import (
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kafkaworks/kafkacluster/cluster"
	"github.com/kafkaworks/kafkacluster/clusterfile"
	"github.com/kafkaworks/kafkacluster/configout"
	"github.com/kafkaworks/kafkacluster/endpointalloc"
)

var rootCmd = &cobra.Command{
	Use:   "clustergen",
	Short: "Generates per-node configuration for a Kafka test cluster",

	Run: func(cmd *cobra.Command, args []string) {
		runClustergen()
	},
}

func init() {
	configFlags := pflag.NewFlagSet("", pflag.ContinueOnError)
	configFlags.String("log-level", "info", "the log level to run at")
	configFlags.String("definition", "cluster.yaml", "path of the cluster definition file")
	configFlags.String("out-dir", "out", "directory to write node configurations to")
	configFlags.String("resolver", "fixedport", "endpoint resolver to use (fixedport or docker)")
	configFlags.String("bind-host", "127.0.0.1", "the local address nodes bind to")
	configFlags.String("advertise-host", "", "the address advertised to clients")
	configFlags.Int("base-port", 19092, "the first port assigned to node listeners")
	configFlags.String("docker-prefix", "kafka", "container name prefix for the docker resolver")
	configFlags.String("docker-published-host", "localhost", "host clients reach published container ports on")
	configFlags.Int("docker-published-port", 29092, "first published client port for the docker resolver")
	configFlags.String("zookeeper-address", "", "zookeeper host:port, required when the definition disables kraft mode")
	configFlags.Bool("watch", false, "regenerate whenever the definition file changes")
	rootCmd.Flags().AddFlagSet(configFlags)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetEnvPrefix("kcg")
	viper.AutomaticEnv()

	_ = viper.BindPFlags(configFlags)
}

func getLogger(level string) (zap.AtomicLevel, *zap.Logger) {
	logLevel := zap.NewAtomicLevel()
	parsedLevel, err := zapcore.ParseLevel(level)
	if err == nil {
		logLevel.SetLevel(parsedLevel)
	}

	logConfig := zap.NewProductionEncoderConfig()
	logConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonEncoder := zapcore.NewJSONEncoder(logConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(jsonEncoder, zapcore.AddSync(os.Stdout), logLevel),
	)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return logLevel, logger
}

type config struct {
	logLevelStr         string
	definitionPath      string
	outDir              string
	resolverKind        string
	bindHost            string
	advertiseHost       string
	basePort            int
	dockerPrefix        string
	dockerPublishedHost string
	dockerPublishedPort int
	zookeeperAddress    string
	watch               bool
}

func readConfig(logger *zap.Logger) *config {
	config := &config{
		logLevelStr:         viper.GetString("log-level"),
		definitionPath:      viper.GetString("definition"),
		outDir:              viper.GetString("out-dir"),
		resolverKind:        viper.GetString("resolver"),
		bindHost:            viper.GetString("bind-host"),
		advertiseHost:       viper.GetString("advertise-host"),
		basePort:            viper.GetInt("base-port"),
		dockerPrefix:        viper.GetString("docker-prefix"),
		dockerPublishedHost: viper.GetString("docker-published-host"),
		dockerPublishedPort: viper.GetInt("docker-published-port"),
		zookeeperAddress:    viper.GetString("zookeeper-address"),
		watch:               viper.GetBool("watch"),
	}

	logger.Info("parsed clustergen configuration",
		zap.String("logLevelStr", config.logLevelStr),
		zap.String("definitionPath", config.definitionPath),
		zap.String("outDir", config.outDir),
		zap.String("resolverKind", config.resolverKind),
		zap.String("bindHost", config.bindHost),
		zap.String("advertiseHost", config.advertiseHost),
		zap.Int("basePort", config.basePort),
		zap.String("dockerPrefix", config.dockerPrefix),
		zap.String("dockerPublishedHost", config.dockerPublishedHost),
		zap.Int("dockerPublishedPort", config.dockerPublishedPort),
		zap.String("zookeeperAddress", config.zookeeperAddress),
		zap.Bool("watch", config.watch))

	return config
}

func buildResolver(config *config) (cluster.EndpointResolver, error) {
	switch config.resolverKind {
	case "fixedport":
		return endpointalloc.NewFixedPortResolver(&endpointalloc.FixedPortResolverOptions{
			BindHost:      config.bindHost,
			AdvertiseHost: config.advertiseHost,
			BasePort:      config.basePort,
		})
	case "docker":
		return endpointalloc.NewDockerNetworkResolver(&endpointalloc.DockerNetworkResolverOptions{
			NamePrefix:        config.dockerPrefix,
			PublishedHost:     config.dockerPublishedHost,
			PublishedBasePort: config.dockerPublishedPort,
		})
	}

	return nil, errors.Errorf("unknown resolver kind %q", config.resolverKind)
}

func buildCoordinatorSupplier(config *config) cluster.CoordinatorSupplier {
	if config.zookeeperAddress == "" {
		return nil
	}

	return func() (cluster.Endpoint, error) {
		host, portStr, err := net.SplitHostPort(config.zookeeperAddress)
		if err != nil {
			return cluster.Endpoint{}, errors.Wrap(err, "invalid zookeeper address")
		}

		port, err := strconv.Atoi(portStr)
		if err != nil {
			return cluster.Endpoint{}, errors.Wrap(err, "invalid zookeeper port")
		}

		return cluster.Endpoint{Host: host, Port: port}, nil
	}
}

func generateOnce(logger *zap.Logger, config *config) error {
	topo, err := clusterfile.Load(config.definitionPath)
	if err != nil {
		return err
	}

	resolver, err := buildResolver(config)
	if err != nil {
		return err
	}

	configs, err := cluster.GenerateConfigs(topo, resolver, buildCoordinatorSupplier(config))
	if err != nil {
		return err
	}

	if err := configout.WriteCluster(config.outDir, configs); err != nil {
		return err
	}

	endpoints := make([]string, 0, len(configs))
	for _, nodeConfig := range configs {
		endpoints = append(endpoints, nodeConfig.Endpoint)
	}

	logger.Info("generated cluster configuration",
		zap.Int("numNodes", topo.NumNodes()),
		zap.Bool("kraftMode", topo.IsKRaftMode()),
		zap.String("clusterId", topo.ClusterID()),
		zap.String("bootstrapServers", strings.Join(endpoints, ",")),
		zap.String("outDir", config.outDir))

	return nil
}

func watchAndRegenerate(logger *zap.Logger, config *config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create definition watcher")
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(config.definitionPath); err != nil {
		return errors.Wrap(err, "failed to watch definition file")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("watching cluster definition for changes",
		zap.String("definitionPath", config.definitionPath))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				logger.Info("cluster definition changed, regenerating")
				if err := generateOnce(logger, config); err != nil {
					logger.Error("failed to regenerate cluster configuration", zap.Error(err))
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("definition watcher error", zap.Error(err))
		case <-sigCh:
			logger.Info("shutting down definition watcher")
			return nil
		}
	}
}

func runClustergen() {
	_, bootLogger := getLogger("info")

	config := readConfig(bootLogger)

	_, logger := getLogger(config.logLevelStr)

	if err := generateOnce(logger, config); err != nil {
		logger.Error("failed to generate cluster configuration", zap.Error(err))
		os.Exit(1)
	}

	if config.watch {
		if err := watchAndRegenerate(logger, config); err != nil {
			logger.Error("definition watch failed", zap.Error(err))
			os.Exit(1)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
