// Package prompt loads the instruction templates sent to the completion API.
//
// Templates are text/template files named <name>.txt. A project can override
// any embedded template by placing a file of the same name in
// .tidynote/prompts/ or prompts/:
//
//	loader := prompt.NewLoader(projectDir)
//	instruction, err := loader.SystemInstruction(nil)
package prompt
