// Package modules declares every feature module shipped with modhost.
//
// Modules are listed statically; the registry is populated from All at
// startup in the order given here.
package modules

import "github.com/artpar/modhost/core/module"

// All returns the definition of every module.
func All() []module.Definition {
	return []module.Definition{
		Privacy(),
		LocalFonts(),
		System(),
		A11y(),
		Administration(),
		Pagespeed(),
		Umami(),
		Login(),
		UIKit(),
		FileManager(),
		CustomPostTypes(),
	}
}
