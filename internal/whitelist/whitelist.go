// Package whitelist decides which identifiers must never be renamed.
package whitelist

import "strings"

// Predicate reports whether a name is protected from renaming.
type Predicate func(name string) bool

// systemPrefixes cover Apple framework namespaces and compiler-reserved names.
var systemPrefixes = []string{
	"NS", "UI", "CG", "CA", "CF", "AV", "CL", "MK", "WK", "SK", "MT", "SCN",
	"__", "objc_", "OS_",
}

// swiftBuiltins are Swift standard library and common framework types that a
// line scanner can encounter as declarations in extensions.
var swiftBuiltins = map[string]bool{
	"String": true, "Int": true, "Int8": true, "Int16": true, "Int32": true,
	"Int64": true, "UInt": true, "UInt8": true, "UInt16": true, "UInt32": true,
	"UInt64": true, "Float": true, "Double": true, "Bool": true, "Void": true,
	"Any": true, "AnyObject": true, "Data": true, "Date": true, "URL": true,
	"UUID": true, "Error": true, "Array": true, "Dictionary": true, "Set": true,
	"Optional": true, "Result": true, "Never": true,
	"Codable": true, "Decodable": true, "Encodable": true, "Sendable": true,
	"Equatable": true, "Hashable": true, "Comparable": true, "Identifiable": true,
	"CustomStringConvertible": true, "LocalizedError": true,
	"View": true, "App": true, "Scene": true, "Body": true, "Task": true,
	"MainActor": true, "ObservableObject": true,
}

// commonIdentifiers are entry points and runtime hooks that must keep their
// names for the program to link and launch.
var commonIdentifiers = map[string]bool{
	"main": true, "init": true, "dealloc": true, "self": true, "super": true,
	"description": true, "hash": true, "copy": true, "mutableCopy": true,
	"alloc": true, "new": true, "release": true, "retain": true, "autorelease": true,
	"viewDidLoad": true, "viewWillAppear": true, "viewDidAppear": true,
	"viewWillDisappear": true, "viewDidDisappear": true, "loadView": true,
	"awakeFromNib": true, "layoutSubviews": true, "drawRect": true,
	"application": true, "applicationDidFinishLaunching": true,
	"didReceiveMemoryWarning": true, "deinit": true, "body": true,
}

// New builds a predicate from the built-in system rules plus caller-supplied
// exact names and prefixes (typically from configuration).
func New(extraNames, extraPrefixes []string) Predicate {
	names := make(map[string]bool, len(extraNames))
	for _, n := range extraNames {
		names[n] = true
	}
	prefixes := append([]string{}, extraPrefixes...)

	return func(name string) bool {
		if name == "" {
			return true
		}
		if names[name] || commonIdentifiers[name] || swiftBuiltins[name] {
			return true
		}
		// Hungarian constant convention: kSomething.
		if len(name) > 1 && name[0] == 'k' && name[1] >= 'A' && name[1] <= 'Z' {
			return true
		}
		for _, p := range systemPrefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

// None is a predicate that protects nothing; useful in tests.
func None(string) bool { return false }
