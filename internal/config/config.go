// Package config loads the INI session configuration: target options, the
// reset configuration, poll periods, log level and the simulated part.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"hlatarget/internal/adapter"
	"hlatarget/internal/common"
	"hlatarget/internal/dbg"
	"hlatarget/internal/hla"
	"hlatarget/internal/sim"
)

// Config is a complete session configuration.
type Config struct {
	Target    hla.Config
	Poll      time.Duration
	DCCPoll   time.Duration
	LogLevel  common.Severity
	Simulator sim.Config
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Target:    hla.DefaultConfig(),
		Poll:      100 * time.Millisecond,
		DCCPoll:   time.Millisecond,
		LogLevel:  common.SeverityInfo,
		Simulator: sim.DefaultConfig(),
	}
}

// Load reads a configuration file over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a configuration over the defaults. Missing keys keep their
// default; unknown keys are ignored.
func Parse(r io.Reader) (Config, error) {
	ini, err := ParseIni(r)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	p := &parser{ini: ini}

	if sec := ini.GetSection(TargetSectionName); sec != nil {
		if v, ok := sec[APNumKey]; ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, fmt.Errorf("%s.%s: %w", TargetSectionName, APNumKey, err)
			}
			cfg.Target.APNum = n
		}
		p.boolean(TargetSectionName, ResetHaltKey, &cfg.Target.ResetHalt)
		p.boolean(TargetSectionName, DeferExamineKey, &cfg.Target.DeferExamine)
		p.boolean(TargetSectionName, DbgMsgKey, &cfg.Target.DbgMsgEnabled)
	}
	if cfg.Target.APNum != dbg.APSelInvalid && cfg.Target.APNum != 0 {
		return Config{}, common.Errorf(dbg.ErrCommandSyntax, "invalid parameter %s (> 0)", APNumKey)
	}

	if sec := ini.GetSection(ResetSectionName); sec != nil {
		switch v := strings.ToLower(sec[SRSTKey]); v {
		case "", "none":
			cfg.Target.Reset = adapter.ResetNone
		case "srst_only":
			cfg.Target.Reset = adapter.ResetHasSRST
		default:
			return Config{}, fmt.Errorf("%s.%s: unknown reset configuration %q", ResetSectionName, SRSTKey, v)
		}
		nogate := false
		p.boolean(ResetSectionName, SRSTNoGateKey, &nogate)
		if nogate {
			cfg.Target.Reset |= adapter.ResetSRSTNoGating
		}
	}

	p.millis(PollSectionName, PeriodKey, &cfg.Poll)
	p.millis(PollSectionName, DCCPeriodKey, &cfg.DCCPoll)

	if sec := ini.GetSection(LogSectionName); sec != nil {
		if v, ok := sec[LevelKey]; ok {
			level, err := common.ParseSeverity(strings.ToLower(v))
			if err != nil {
				return Config{}, fmt.Errorf("%s.%s: %w", LogSectionName, LevelKey, err)
			}
			cfg.LogLevel = level
		}
	}

	p.address(SimSectionName, FlashBaseKey, &cfg.Simulator.FlashBase)
	p.address(SimSectionName, FlashSizeKey, &cfg.Simulator.FlashSize)
	p.address(SimSectionName, RAMBaseKey, &cfg.Simulator.RAMBase)
	p.address(SimSectionName, RAMSizeKey, &cfg.Simulator.RAMSize)
	p.boolean(SimSectionName, SRSTSupportedKey, &cfg.Simulator.SRSTSupported)

	if p.err != nil {
		return Config{}, p.err
	}
	return cfg, nil
}

// parser keeps the first conversion error so keys can be read in sequence.
type parser struct {
	ini *IniFile
	err error
}

func (p *parser) value(section, key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.ini.GetSection(section)[key]
	return v, ok
}

func (p *parser) boolean(section, key string, dst *bool) {
	v, ok := p.value(section, key)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on", "enable":
		*dst = true
	case "0", "false", "no", "off", "disable":
		*dst = false
	default:
		p.err = fmt.Errorf("%s.%s: not a boolean: %q", section, key, v)
	}
}

func (p *parser) millis(section, key string, dst *time.Duration) {
	v, ok := p.value(section, key)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil || n == 0 {
		p.err = fmt.Errorf("%s.%s: not a positive millisecond count: %q", section, key, v)
		return
	}
	*dst = time.Duration(n) * time.Millisecond
}

func (p *parser) address(section, key string, dst *uint32) {
	v, ok := p.value(section, key)
	if !ok {
		return
	}
	n, err := ParseUint32(v)
	if err != nil {
		p.err = fmt.Errorf("%s.%s: %w", section, key, err)
		return
	}
	*dst = n
}

// ParseUint32 parses a decimal or 0x-prefixed hex number, with an optional
// K or M size suffix.
func ParseUint32(s string) (uint32, error) {
	mult := uint64(1)
	switch {
	case strings.HasSuffix(s, "K") || strings.HasSuffix(s, "k"):
		mult, s = 1<<10, s[:len(s)-1]
	case strings.HasSuffix(s, "M") || strings.HasSuffix(s, "m"):
		mult, s = 1<<20, s[:len(s)-1]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, s = 16, s[2:]
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	v *= mult
	if v > 0xFFFFFFFF {
		return 0, fmt.Errorf("value %d out of range", v)
	}
	return uint32(v), nil
}
