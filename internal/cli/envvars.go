package cli

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ParseFlagsWithEnvVars parses the command line flags after applying
// environment variables with the given prefix. It exits on failure.
func ParseFlagsWithEnvVars(flags *flag.FlagSet, envVarPrefix string) {
	addLogLevelFlag(flags)

	err := ParseFlags(flags, envVarPrefix, os.Args[1:], os.Environ())
	if err != nil {
		flags.Usage()
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// ParseFlags sets every flag from its environment variable, if present, and
// parses args afterwards so that arguments override the environment.
// The variable name is the prefix followed by the upper-case flag name with dashes replaced by underscores.
// Unknown variables with the prefix are rejected.
func ParseFlags(flags *flag.FlagSet, envVarPrefix string, args, environ []string) error {
	env := map[string]string{}
	for _, entry := range environ {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) == 2 && strings.HasPrefix(kv[0], envVarPrefix) {
			env[kv[0]] = kv[1]
		}
	}

	supportedEnvVars := map[string]struct{}{}

	var err error

	flags.VisitAll(func(f *flag.Flag) {
		envVarName := EnvVarName(envVarPrefix, f.Name)
		f.Usage = fmt.Sprintf("%s (%s)", f.Usage, envVarName)
		supportedEnvVars[envVarName] = struct{}{}

		if envVarValue := env[envVarName]; envVarValue != "" && err == nil {
			f.DefValue = envVarValue
			if e := f.Value.Set(envVarValue); e != nil {
				err = fmt.Errorf("invalid environment variable %s value provided: %w", envVarName, e)
			}
		}
	})

	if err != nil {
		return err
	}

	for name := range env {
		if _, ok := supportedEnvVars[name]; !ok {
			return fmt.Errorf("unsupported environment variable provided: %s", name)
		}
	}

	return flags.Parse(args)
}

func EnvVarName(prefix, flagName string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
