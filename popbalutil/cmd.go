/*
Copyright © 2018 the PopBal authors.
This file is part of PopBal.

PopBal is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PopBal is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PopBal.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package popbalutil holds the configuration and command-line interface
// for the PopBal model.
package popbalutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/popbal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to PopBal.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GridShape",
			usage: `
              GridShape gives the number of grid points in each dimension
              of the simulation domain.`,
			defaultVal: []int{10, 10, 10},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GrowthModel",
			usage: `
              GrowthModel selects the particle growth sub-model. Acceptable
              values are 'BULK_DIFFUSION', 'MONOSURFACE', 'CONSTANT', and
              'KINETIC'.`,
			defaultVal: "CONSTANT",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LengthParameter",
			usage: `
              LengthParameter scales the aggregation efficiency model and
              matches its units.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GrowthCoefficient",
			usage: `
              GrowthCoefficient is the growth-rate coefficient kg [m/s].`,
			defaultVal: 1.0e-8,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "KineticExponent",
			usage: `
              KineticExponent is the supersaturation exponent of the
              KINETIC growth model. It is ignored by the other models.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AbscissaRadii",
			usage: `
              AbscissaRadii gives the representative particle radius [m]
              of each quadrature size class.`,
			defaultVal: []string{"1e-6", "2.5e-6", "5e-6"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Density",
			usage: `
              Density is the fluid density [kg/m³].`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DissipationRate",
			usage: `
              DissipationRate is the turbulent kinetic energy dissipation
              rate [m²/s³].`,
			defaultVal: 0.001,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Supersaturation",
			usage: `
              Supersaturation is the solute supersaturation ratio driving
              particle growth.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the logging verbosity ('debug', 'info',
              'warning', or 'error').`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("POPBAL")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("popbal: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("popbal: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "popbal",
	Short: "A population-balance model for particulate systems.",
	Long: `PopBal computes population-balance source terms for particulate
systems suspended in a turbulent fluid.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'POPBAL_var'
where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of PopBal.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("PopBal v%s\n", popbal.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd evaluates one aggregation-efficiency cycle.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the aggregation efficiency fields.",
	Long: `run assembles the expression graph for the configured growth
model, evaluates the growth-rate coefficient and the aggregation
efficiency for every ordered pair of size classes, and logs a summary of
each efficiency field.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ConfigFromViper(Cfg)
		if err != nil {
			return err
		}
		sim, err := NewSimulation(c)
		if err != nil {
			return err
		}
		if err := sim.Run(); err != nil {
			return err
		}
		sim.LogSummary()
		return nil
	},
	DisableAutoGenTag: true,
}
