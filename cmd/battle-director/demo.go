package main

// demoCommands is a canned battle played back when no simulator is
// connected. It exercises switches, contact and ranged moves, stat
// stages, status, weather, and a faint
var demoCommands = []string{
	"|switch|p1a: Garchomp|Garchomp, L50|100/100",
	"|switch|p2a: Clodsire|Clodsire, L50|100/100",
	"|turn|1",
	"|move|p1a: Garchomp|Earthquake|p2a: Clodsire",
	"|-damage|p2a: Clodsire|62/100",
	"|move|p2a: Clodsire|Toxic|p1a: Garchomp",
	"|-status|p1a: Garchomp|tox",
	"|turn|2",
	"|move|p2a: Clodsire|Amnesia|p2a: Clodsire",
	"|-boost|p2a: Clodsire|spd|2",
	"|move|p1a: Garchomp|Dragon Claw|p2a: Clodsire",
	"|-damage|p2a: Clodsire|30/100",
	"|-damage|p1a: Garchomp|88/100",
	"|turn|3",
	"|-weather|Sandstorm",
	"|move|p1a: Garchomp|Earthquake|p2a: Clodsire",
	"|-damage|p2a: Clodsire|0 fnt",
	"|switch|p2a: Corviknight|Corviknight, L50|100/100",
	"|turn|4",
	"|move|p2a: Corviknight|Swords Dance|p2a: Corviknight",
	"|-boost|p2a: Corviknight|atk|2",
	"|move|p1a: Garchomp|Stone Edge|p2a: Corviknight",
	"|-damage|p2a: Corviknight|41/100",
	"|turn|5",
	"|move|p2a: Corviknight|Brave Bird|p1a: Garchomp",
	"|-damage|p1a: Garchomp|0 fnt",
	"|faint|p1a: Garchomp",
	"|win|Player 2",
}
