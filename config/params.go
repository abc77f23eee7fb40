package config

// Kind is the value type of a parameter.
type Kind int

const (
	KindBool Kind = iota
	KindLong
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindLong:
		return "long"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Param identifies a setting held by the Store.
type Param int

const (
	BoolPaused Param = iota
	BoolTraining
	BoolRedraw
	BoolColourMode
	BoolOutlineMode
	BoolMousePosMode
	BoolButtonSteady
	BoolButtonPulsing
	BoolPaletteChange
	BoolControlMode
	BoolSlowStart

	LongOrientation
	LongRealOrientation
	LongLanguageModelID
	LongViewID
	LongLineWidth
	LongFontSize
	LongMousePosBox
	LongMaxBitrate
	LongUserLogLevel
	LongSlowStartTime
	LongLMOrder
	LongUniform

	StringAlphabetID
	StringColourID
	StringTrainFile
	StringGameTextFile
	StringSystemLoc
	StringUserLoc

	paramCount
)

// Screen orientations stored in LongOrientation / LongRealOrientation.
const (
	OrientationAlphabetDefault int64 = -2
	OrientationLeftToRight     int64 = 0
	OrientationRightToLeft     int64 = 1
	OrientationTopToBottom     int64 = 2
	OrientationBottomToTop     int64 = 3
)

// Language model kinds stored in LongLanguageModelID.
const (
	ModelPPM     int64 = 0
	ModelBigram  int64 = 1
	ModelUniform int64 = 2
)

type definition struct {
	key         string
	kind        Kind
	persistent  bool
	boolValue   bool
	longValue   int64
	stringValue string
	help        string
}

var definitions = [paramCount]definition{
	BoolPaused:        {key: "paused", kind: KindBool, boolValue: true, help: "navigation is paused"},
	BoolTraining:      {key: "training", kind: KindBool, help: "language model is being rebuilt"},
	BoolRedraw:        {key: "redraw", kind: KindBool, help: "full redraw requested for the next frame"},
	BoolColourMode:    {key: "colour_mode", kind: KindBool, persistent: true, boolValue: true, help: "colour boxes by symbol group"},
	BoolOutlineMode:   {key: "outline_mode", kind: KindBool, persistent: true, boolValue: true, help: "draw box outlines"},
	BoolMousePosMode:  {key: "mouse_pos_mode", kind: KindBool, persistent: true, help: "start by holding the pointer in the start box"},
	BoolButtonSteady:  {key: "button_steady", kind: KindBool, persistent: true, boolValue: true, help: "switch targets jump without easing"},
	BoolButtonPulsing: {key: "button_pulsing", kind: KindBool, persistent: true, help: "switch targets ease in from the centre"},
	BoolPaletteChange: {key: "palette_change", kind: KindBool, persistent: true, boolValue: true, help: "let alphabets choose their colour scheme"},
	BoolControlMode:   {key: "control_mode", kind: KindBool, persistent: true, help: "offer control nodes alongside text"},
	BoolSlowStart:     {key: "slow_start", kind: KindBool, persistent: true, boolValue: true, help: "ramp speed up after unpausing"},

	LongOrientation:     {key: "orientation", kind: KindLong, persistent: true, longValue: OrientationAlphabetDefault, help: "screen orientation (-2 = alphabet default)"},
	LongRealOrientation: {key: "real_orientation", kind: KindLong, longValue: OrientationLeftToRight, help: "orientation in effect"},
	LongLanguageModelID: {key: "language_model_id", kind: KindLong, persistent: true, longValue: ModelPPM, help: "0 = PPM, 1 = bigram, 2 = uniform"},
	LongViewID:          {key: "view_id", kind: KindLong, persistent: true, longValue: 1, help: "view kind (-1 = none)"},
	LongLineWidth:       {key: "line_width", kind: KindLong, persistent: true, longValue: 1, help: "outline width"},
	LongFontSize:        {key: "font_size", kind: KindLong, persistent: true, longValue: 1, help: "font size class"},
	LongMousePosBox:     {key: "mouse_pos_box", kind: KindLong, longValue: -1, help: "start box shown (-1 = none)"},
	LongMaxBitrate:      {key: "max_bitrate", kind: KindLong, persistent: true, longValue: 80, help: "speed in hundredths of a nat per second"},
	LongUserLogLevel:    {key: "user_log_level", kind: KindLong, persistent: true, help: "activity log level mask (0 = off)"},
	LongSlowStartTime:   {key: "slow_start_time", kind: KindLong, persistent: true, longValue: 1000, help: "speed ramp duration in ms"},
	LongLMOrder:         {key: "lm_order", kind: KindLong, persistent: true, longValue: 5, help: "PPM context order"},
	LongUniform:         {key: "uniform", kind: KindLong, persistent: true, longValue: 50, help: "uniform share in parts per thousand"},

	StringAlphabetID:   {key: "alphabet_id", kind: KindString, persistent: true, stringValue: "English with limited punctuation", help: "active alphabet"},
	StringColourID:     {key: "colour_id", kind: KindString, persistent: true, stringValue: "Default", help: "active colour scheme"},
	StringTrainFile:    {key: "train_file", kind: KindString, help: "training file of the active alphabet"},
	StringGameTextFile: {key: "game_text_file", kind: KindString, help: "game mode text of the active alphabet"},
	StringSystemLoc:    {key: "system_location", kind: KindString, persistent: true, help: "directory holding shipped training text"},
	StringUserLoc:      {key: "user_location", kind: KindString, persistent: true, help: "directory holding user training text"},
}

var byKey = func() map[string]Param {
	m := make(map[string]Param, paramCount)
	for p := Param(0); p < paramCount; p++ {
		m[definitions[p].key] = p
	}
	return m
}()

// Valid reports whether p names a known parameter.
func (p Param) Valid() bool {
	return p >= 0 && p < paramCount
}

// Key returns the YAML key of p.
func (p Param) Key() string {
	if !p.Valid() {
		return ""
	}
	return definitions[p].key
}

// Kind returns the value type of p.
func (p Param) Kind() Kind {
	if !p.Valid() {
		return -1
	}
	return definitions[p].kind
}

// Help returns a one-line description of p.
func (p Param) Help() string {
	if !p.Valid() {
		return ""
	}
	return definitions[p].help
}

// Persistent reports whether p is written to the settings file.
func (p Param) Persistent() bool {
	return p.Valid() && definitions[p].persistent
}

func (p Param) String() string {
	if !p.Valid() {
		return "unknown"
	}
	return definitions[p].key
}

// Lookup finds a parameter by its YAML key.
func Lookup(key string) (Param, bool) {
	p, ok := byKey[key]
	return p, ok
}

// Params returns every parameter in declaration order.
func Params() []Param {
	out := make([]Param, 0, paramCount)
	for p := Param(0); p < paramCount; p++ {
		out = append(out, p)
	}
	return out
}
