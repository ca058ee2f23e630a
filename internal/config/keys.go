package config

const (
	TargetSectionName = "target"
	APNumKey          = "ap_num"
	ResetHaltKey      = "reset_halt"
	DeferExamineKey   = "defer_examine"
	DbgMsgKey         = "dbg_msg"

	ResetSectionName = "reset"
	SRSTKey          = "srst"
	SRSTNoGateKey    = "srst_nogate"

	PollSectionName = "poll"
	PeriodKey       = "period_ms"
	DCCPeriodKey    = "dcc_period_ms"

	LogSectionName = "log"
	LevelKey       = "level"

	SimSectionName   = "sim"
	FlashBaseKey     = "flash_base"
	FlashSizeKey     = "flash_size"
	RAMBaseKey       = "ram_base"
	RAMSizeKey       = "ram_size"
	SRSTSupportedKey = "srst_supported"
)
