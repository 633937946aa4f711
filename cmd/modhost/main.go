// Package main is the entry point for modhost.
//
//	@title						modhost - Module Settings API
//	@version					1.0
//	@description				Configuration and dependency resolution for feature modules: list modules, toggle them and save their settings.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin token or session token (format: "Bearer {token}")
package main

func main() {
	Execute()
}
