package blocks

import "strings"

// opcodeInfo describes how one opcode decodes and renders: its display
// template with {SLOT} placeholders, how many branch slots it owns, and the
// shape flags the bracket rules key off. The table is built once and only
// ever read.
type opcodeInfo struct {
	template string
	branches int
	boolean  bool
	hat      bool
	// menuField marks a shadow dropdown block and names the field holding
	// the chosen value.
	menuField string
}

var opcodes = map[string]opcodeInfo{
	// Motion
	"motion_movesteps":        {template: "move {STEPS} steps"},
	"motion_turnright":        {template: "turn cw {DEGREES} degrees"},
	"motion_turnleft":         {template: "turn ccw {DEGREES} degrees"},
	"motion_goto":             {template: "go to {TO}"},
	"motion_gotoxy":           {template: "go to x: {X} y: {Y}"},
	"motion_glideto":          {template: "glide {SECS} secs to {TO}"},
	"motion_glidesecstoxy":    {template: "glide {SECS} secs to x: {X} y: {Y}"},
	"motion_pointindirection": {template: "point in direction {DIRECTION}"},
	"motion_pointtowards":     {template: "point towards {TOWARDS}"},
	"motion_changexby":        {template: "change x by {DX}"},
	"motion_setx":             {template: "set x to {X}"},
	"motion_changeyby":        {template: "change y by {DY}"},
	"motion_sety":             {template: "set y to {Y}"},
	"motion_ifonedgebounce":   {template: "if on edge, bounce"},
	"motion_setrotationstyle": {template: "set rotation style {STYLE}"},
	"motion_xposition":        {template: "(x position)"},
	"motion_yposition":        {template: "(y position)"},
	"motion_direction":        {template: "(direction)"},

	// Looks
	"looks_sayforsecs":               {template: "say {MESSAGE} for {SECS} seconds"},
	"looks_say":                      {template: "say {MESSAGE}"},
	"looks_thinkforsecs":             {template: "think {MESSAGE} for {SECS} seconds"},
	"looks_think":                    {template: "think {MESSAGE}"},
	"looks_switchcostumeto":          {template: "switch costume to {COSTUME}"},
	"looks_nextcostume":              {template: "next costume"},
	"looks_switchbackdropto":         {template: "switch backdrop to {BACKDROP}"},
	"looks_nextbackdrop":             {template: "next backdrop"},
	"looks_changesizeby":             {template: "change size by {CHANGE}"},
	"looks_setsizeto":                {template: "set size to {SIZE}%"},
	"looks_changeeffectby":           {template: "change {EFFECT} effect by {CHANGE}"},
	"looks_seteffectto":              {template: "set {EFFECT} effect to {VALUE}"},
	"looks_cleargraphiceffects":      {template: "clear graphic effects"},
	"looks_show":                     {template: "show"},
	"looks_hide":                     {template: "hide"},
	"looks_gotofrontback":            {template: "go to {FRONT_BACK} layer"},
	"looks_goforwardbackwardlayers":  {template: "go {FORWARD_BACKWARD} {NUM} layers"},
	"looks_costumenumbername":        {template: "(costume {NUMBER_NAME})"},
	"looks_backdropnumbername":       {template: "(backdrop {NUMBER_NAME})"},
	"looks_size":                     {template: "(size)"},

	// Sound
	"sound_playuntildone":  {template: "play sound {SOUND_MENU} until done"},
	"sound_play":           {template: "start sound {SOUND_MENU}"},
	"sound_stopallsounds":  {template: "stop all sounds"},
	"sound_changeeffectby": {template: "change {EFFECT} effect by {VALUE} :: sound"},
	"sound_seteffectto":    {template: "set {EFFECT} effect to {VALUE} :: sound"},
	"sound_cleareffects":   {template: "clear sound effects"},
	"sound_changevolumeby": {template: "change volume by {VOLUME}"},
	"sound_setvolumeto":    {template: "set volume to {VOLUME}%"},
	"sound_volume":         {template: "(volume)"},

	// Events
	"event_whenflagclicked":        {template: "when green flag clicked", hat: true},
	"event_whenkeypressed":         {template: "when {KEY_OPTION} key pressed", hat: true},
	"event_whenthisspriteclicked":  {template: "when this sprite clicked", hat: true},
	"event_whenstageclicked":       {template: "when stage clicked", hat: true},
	"event_whenbackdropswitchesto": {template: "when backdrop switches to {BACKDROP}", hat: true},
	"event_whengreaterthan":        {template: "when {WHENGREATERTHANMENU} > {VALUE}", hat: true},
	"event_whenbroadcastreceived":  {template: "when I receive {BROADCAST_OPTION}", hat: true},
	"event_broadcast":              {template: "broadcast {BROADCAST_INPUT}"},
	"event_broadcastandwait":       {template: "broadcast {BROADCAST_INPUT} and wait"},

	// Control
	"control_wait":              {template: "wait {DURATION} seconds"},
	"control_repeat":            {template: "repeat {TIMES}", branches: 1},
	"control_forever":           {template: "forever", branches: 1},
	"control_if":                {template: "if {CONDITION} then", branches: 1},
	"control_if_else":           {template: "if {CONDITION} then", branches: 2},
	"control_wait_until":        {template: "wait until {CONDITION}"},
	"control_repeat_until":      {template: "repeat until {CONDITION}", branches: 1},
	"control_stop":              {template: "stop {STOP_OPTION}"},
	"control_start_as_clone":    {template: "when I start as a clone", hat: true},
	"control_create_clone_of":   {template: "create clone of {CLONE_OPTION}"},
	"control_delete_this_clone": {template: "delete this clone"},

	// Sensing
	"sensing_touchingobject":        {template: "<touching {TOUCHINGOBJECTMENU}?>", boolean: true},
	"sensing_touchingcolor":         {template: "<touching color {COLOR}?>", boolean: true},
	"sensing_coloristouchingcolor":  {template: "<color {COLOR} is touching {COLOR2}?>", boolean: true},
	"sensing_distanceto":            {template: "(distance to {DISTANCETOMENU})"},
	"sensing_askandwait":            {template: "ask {QUESTION} and wait"},
	"sensing_answer":                {template: "(answer)"},
	"sensing_keypressed":            {template: "<key {KEY_OPTION} pressed?>", boolean: true},
	"sensing_mousedown":             {template: "<mouse down?>", boolean: true},
	"sensing_mousex":                {template: "(mouse x)"},
	"sensing_mousey":                {template: "(mouse y)"},
	"sensing_setdragmode":           {template: "set drag mode {DRAG_MODE}"},
	"sensing_loudness":              {template: "(loudness)"},
	"sensing_timer":                 {template: "(timer)"},
	"sensing_resettimer":            {template: "reset timer"},
	"sensing_of":                    {template: "({PROPERTY} of {OBJECT})"},
	"sensing_current":               {template: "(current {CURRENTMENU})"},
	"sensing_dayssince2000":         {template: "(days since 2000)"},
	"sensing_username":              {template: "(username)"},

	// Operators
	"operator_add":       {template: "({NUM1} + {NUM2})"},
	"operator_subtract":  {template: "({NUM1} - {NUM2})"},
	"operator_multiply":  {template: "({NUM1} * {NUM2})"},
	"operator_divide":    {template: "({NUM1} / {NUM2})"},
	"operator_random":    {template: "(pick random {FROM} to {TO})"},
	"operator_gt":        {template: "<{OPERAND1} > {OPERAND2}>", boolean: true},
	"operator_lt":        {template: "<{OPERAND1} < {OPERAND2}>", boolean: true},
	"operator_equals":    {template: "<{OPERAND1} = {OPERAND2}>", boolean: true},
	"operator_and":       {template: "<{OPERAND1} and {OPERAND2}>", boolean: true},
	"operator_or":        {template: "<{OPERAND1} or {OPERAND2}>", boolean: true},
	"operator_not":       {template: "<not {OPERAND}>", boolean: true},
	"operator_join":      {template: "(join {STRING1} {STRING2})"},
	"operator_letter_of": {template: "(letter {LETTER} of {STRING})"},
	"operator_length":    {template: "(length of {STRING})"},
	"operator_contains":  {template: "<{STRING1} contains {STRING2}?>", boolean: true},
	"operator_mod":       {template: "({NUM1} mod {NUM2})"},
	"operator_round":     {template: "(round {NUM})"},
	"operator_mathop":    {template: "({OPERATOR} of {NUM} :: operators)"},

	// Variables
	"data_setvariableto":   {template: "set {VARIABLE} to {VALUE}"},
	"data_changevariableby": {template: "change {VARIABLE} by {VALUE}"},
	"data_showvariable":    {template: "show variable {VARIABLE}"},
	"data_hidevariable":    {template: "hide variable {VARIABLE}"},

	// Lists
	"data_addtolist":        {template: "add {ITEM} to {LIST}"},
	"data_deleteoflist":     {template: "delete {INDEX} of {LIST}"},
	"data_deletealloflist":  {template: "delete all of {LIST}"},
	"data_insertatlist":     {template: "insert {ITEM} at {INDEX} of {LIST}"},
	"data_replaceitemoflist": {template: "replace item {INDEX} of {LIST} with {ITEM}"},
	"data_itemoflist":       {template: "(item {INDEX} of {LIST})"},
	"data_itemnumoflist":    {template: "(item # of {ITEM} in {LIST})"},
	"data_lengthoflist":     {template: "(length of {LIST})"},
	"data_listcontainsitem": {template: "<{LIST} contains {ITEM}?>", boolean: true},
	"data_showlist":         {template: "show list {LIST}"},
	"data_hidelist":         {template: "hide list {LIST}"},

	// Standalone variable/list reporters. These opcodes only occur for
	// reporters dropped straight onto the canvas; the field prints bare,
	// so they get special handling in the renderer rather than the
	// dropdown treatment the field names would otherwise trigger.
	"data_variable":     {template: "({VARIABLE})"},
	"data_listcontents": {template: "({LIST})"},

	// My Blocks. Definition and call render through their mutation
	// proccode; the templates are fallbacks for blocks missing one.
	"procedures_definition":           {template: "define {PROCCODE}", hat: true},
	"procedures_call":                 {template: "{PROCCODE}"},
	"argument_reporter_string_number": {template: "({VALUE})"},
	"argument_reporter_boolean":       {template: "<{VALUE}>"},

	// Dropdown shadow menus. Resolved to their field value during decode.
	"sensing_touchingobjectmenu":   {template: "{TOUCHINGOBJECTMENU}", menuField: "TOUCHINGOBJECTMENU"},
	"motion_pointtowards_menu":     {template: "{TOWARDS}", menuField: "TOWARDS"},
	"motion_goto_menu":             {template: "{TO}", menuField: "TO"},
	"motion_glideto_menu":          {template: "{TO}", menuField: "TO"},
	"looks_costume":                {template: "{COSTUME}", menuField: "COSTUME"},
	"looks_backdrops":              {template: "{BACKDROP}", menuField: "BACKDROP"},
	"sound_sounds_menu":            {template: "{SOUND_MENU}", menuField: "SOUND_MENU"},
	"event_broadcast_menu":         {template: "{BROADCAST_OPTION}", menuField: "BROADCAST_OPTION"},
	"control_create_clone_of_menu": {template: "{CLONE_OPTION}", menuField: "CLONE_OPTION"},
	"sensing_of_object_menu":       {template: "{OBJECT}", menuField: "OBJECT"},
	"sensing_distancetomenu":       {template: "{DISTANCETOMENU}", menuField: "DISTANCETOMENU"},
	"sensing_keyoptions":           {template: "{KEY_OPTION}", menuField: "KEY_OPTION"},

	// Music extension
	"music_playDrumForBeats": {template: "play drum {DRUM} for {BEATS} beats"},
	"music_restForBeats":     {template: "rest for {BEATS} beats"},
	"music_playNoteForBeats": {template: "play note {NOTE} for {BEATS} beats"},
	"music_setInstrument":    {template: "set instrument to {INSTRUMENT}"},
	"music_setTempo":         {template: "set tempo to {TEMPO}"},
	"music_changeTempo":      {template: "change tempo by {TEMPO}"},
	"music_getTempo":         {template: "(tempo)"},
	"music_menu_DRUM":        {template: "{DRUM}", menuField: "DRUM"},
	"music_menu_INSTRUMENT":  {template: "{INSTRUMENT}", menuField: "INSTRUMENT"},
	"note":                   {template: "[{NOTE}]", menuField: "NOTE"},

	// Pen extension
	"pen_clear":                {template: "erase all"},
	"pen_stamp":                {template: "stamp"},
	"pen_penDown":              {template: "pen down"},
	"pen_penUp":                {template: "pen up"},
	"pen_setPenColorToColor":   {template: "set pen color to {COLOR}"},
	"pen_changePenColorParamBy": {template: "change pen {COLOR_PARAM} by {VALUE}"},
	"pen_setPenColorParamTo":   {template: "set pen {COLOR_PARAM} to {VALUE}"},
	"pen_changePenSizeBy":      {template: "change pen size by {SIZE}"},
	"pen_setPenSizeTo":         {template: "set pen size to {SIZE}"},
	"pen_menu_colorParam":      {template: "{colorParam}", menuField: "colorParam"},

	// Video sensing extension
	"videoSensing_whenMotionGreaterThan": {template: "when video motion > {REFERENCE}", hat: true},
	"videoSensing_videoOn":               {template: "(video {ATTRIBUTE} on {SUBJECT})"},
	"videoSensing_videoToggle":           {template: "turn video {VIDEO_STATE}"},
	"videoSensing_setVideoTransparency":  {template: "set video transparency to {TRANSPARENCY}%"},
	"videoSensing_menu_ATTRIBUTE":        {template: "{ATTRIBUTE}", menuField: "ATTRIBUTE"},
	"videoSensing_menu_SUBJECT":          {template: "{SUBJECT}", menuField: "SUBJECT"},
	"videoSensing_menu_VIDEO_STATE":      {template: "{VIDEO_STATE}", menuField: "VIDEO_STATE"},

	// Face sensing extension
	"faceSensing_whenFaceDetected":       {template: "when face is detected::#00aa00", hat: true},
	"faceSensing_whenTilted":             {template: "when head tilted {DIRECTION}::#00aa00", hat: true},
	"faceSensing_whenSpriteTouchesPart":  {template: "when this sprite touches {PART}::#00aa00", hat: true},
	"faceSensing_goToPart":               {template: "go to {PART}::#00aa00"},
	"faceSensing_pointInFaceTiltDirection": {template: "point in face tilt direction::#00aa00"},
	"faceSensing_setSizeToFaceSize":      {template: "set size to face size::#00aa00"},
	"faceSensing_faceIsDetected":         {template: "<face is detected?::#00aa00>", boolean: true},
	"faceSensing_faceTilt":               {template: "(face tilt::#00aa00)"},
	"faceSensing_faceSize":               {template: "(face size::#00aa00)"},

	// Text to speech extension
	"text2speech_speakAndWait":   {template: "speak {WORDS}"},
	"text2speech_setVoice":       {template: "set voice to {VOICE}"},
	"text2speech_setLanguage":    {template: "set language to {LANGUAGE}"},
	"text2speech_menu_voices":    {template: "{voices}", menuField: "voices"},
	"text2speech_menu_languages": {template: "{languages}", menuField: "languages"},

	// Translate extension
	"translate_getTranslate":      {template: "(translate {WORDS} to {LANGUAGE})"},
	"translate_getViewerLanguage": {template: "(language)"},
	"translate_menu_languages":    {template: "{languages}", menuField: "languages"},
}

// dropdownFields are the field names whose values display as [choice v].
var dropdownFields = map[string]bool{
	"TO": true, "TOWARDS": true, "STYLE": true, "COSTUME": true,
	"BACKDROP": true, "EFFECT": true, "FRONT_BACK": true,
	"FORWARD_BACKWARD": true, "NUMBER_NAME": true, "SOUND_MENU": true,
	"KEY_OPTION": true, "WHENGREATERTHANMENU": true, "BROADCAST_OPTION": true,
	"BROADCAST_INPUT": true, "STOP_OPTION": true, "CLONE_OPTION": true,
	"TOUCHINGOBJECTMENU": true, "DISTANCETOMENU": true, "DRAG_MODE": true,
	"PROPERTY": true, "OBJECT": true, "CURRENTMENU": true, "OPERATOR": true,
	"VARIABLE": true, "LIST": true, "DRUM": true, "INSTRUMENT": true,
	"ATTRIBUTE": true, "SUBJECT": true, "VIDEO_STATE": true, "PART": true,
	"DIRECTION": true, "VOICE": true, "LANGUAGE": true,
	"voices": true, "languages": true, "colorParam": true,
}

// lowercaseValues are field values the editor stores uppercased but the
// notation writes in lowercase.
var lowercaseValues = map[string]bool{
	"BRIGHTNESS": true, "COLOR": true, "DATE": true, "DAYOFWEEK": true,
	"FISHEYE": true, "GHOST": true, "HOUR": true, "LOUDNESS": true,
	"MINUTE": true, "MONTH": true, "MOSAIC": true, "PAN": true,
	"PITCH": true, "PIXELATE": true, "SECOND": true, "TIMER": true,
	"WHIRL": true, "YEAR": true,
}

// drumNames maps music extension drum numbers to display names.
var drumNames = map[string]string{
	"1":  "Snare Drum (1)",
	"2":  "Bass Drum (2)",
	"3":  "Side Stick (3)",
	"4":  "Crash Cymbal (4)",
	"5":  "Open Hi-Hat (5)",
	"6":  "Closed Hi-Hat (6)",
	"7":  "Tambourine (7)",
	"8":  "Hand Clap (8)",
	"9":  "Claves (9)",
	"10": "Wood Block (10)",
	"11": "Cowbell (11)",
	"12": "Triangle (12)",
	"13": "Bongo (13)",
	"14": "Conga (14)",
	"15": "Cabasa (15)",
	"16": "Guiro (16)",
	"17": "Vibraslap (17)",
	"18": "Cuica (18)",
}

// instrumentNames maps music extension instrument numbers to display names.
var instrumentNames = map[string]string{
	"1":  "Piano (1)",
	"2":  "Electric Piano (2)",
	"3":  "Organ (3)",
	"4":  "Guitar (4)",
	"5":  "Electric Guitar (5)",
	"6":  "Bass (6)",
	"7":  "Pizzicato (7)",
	"8":  "Cello (8)",
	"9":  "Trombone (9)",
	"10": "Clarinet (10)",
	"11": "Saxophone (11)",
	"12": "Flute (12)",
	"13": "Wooden Flute (13)",
	"14": "Bassoon (14)",
	"15": "Choir (15)",
	"16": "Vibraphone (16)",
	"17": "Music Box (17)",
	"18": "Steel Drum (18)",
	"19": "Marimba (19)",
	"20": "Synth Lead (20)",
	"21": "Synth Pad (21)",
}

// facePartNames maps face sensing part numbers to display names.
var facePartNames = map[string]string{
	"0": "nose (0)",
	"1": "eyes (1)",
	"2": "mouth (2)",
	"3": "left eye (3)",
	"4": "right eye (4)",
	"5": "left ear (5)",
	"6": "right ear (6)",
	"7": "chin (7)",
}

// voiceNames maps text-to-speech voice constants to display names.
var voiceNames = map[string]string{
	"ALTO":   "alto",
	"TENOR":  "tenor",
	"SQUEAK": "squeak",
	"GIANT":  "giant",
	"KITTEN": "kitten",
}

// languageNames maps text-to-speech language codes to display names.
var languageNames = map[string]string{
	"en":    "English",
	"es":    "Spanish",
	"fr":    "French",
	"zh-cn": "Chinese (Mandarin)",
	"pt-br": "Portuguese (Brazilian)",
	"ja":    "Japanese",
	"de":    "German",
	"hi":    "Hindi",
	"it":    "Italian",
	"ko":    "Korean",
	"nl":    "Dutch",
	"pl":    "Polish",
	"pt":    "Portuguese (European)",
	"ru":    "Russian",
	"tr":    "Turkish",
	"ar":    "Arabic",
	"is":    "Icelandic",
	"nb":    "Norwegian",
	"ro":    "Romanian",
	"sv":    "Swedish",
	"cy":    "Welsh",
}

// fieldDisplayName applies the per-field value mappings (extension numeric
// codes to names, uppercase constants to lowercase, menu sentinels like
// _mouse_ stripped of their underscores).
func fieldDisplayName(field, value string) string {
	switch field {
	case "DRUM":
		if name, ok := drumNames[value]; ok {
			value = name
		}
	case "INSTRUMENT":
		if name, ok := instrumentNames[value]; ok {
			value = name
		}
	case "PART":
		if name, ok := facePartNames[value]; ok {
			value = name
		}
	case "voices":
		if name, ok := voiceNames[value]; ok {
			value = name
		}
	case "languages":
		if name, ok := languageNames[value]; ok {
			value = name
		}
	}
	if lowercaseValues[value] {
		value = strings.ToLower(value)
	}
	if strings.HasPrefix(value, "_") && strings.HasSuffix(value, "_") {
		value = strings.Trim(value, "_")
	}
	return value
}
