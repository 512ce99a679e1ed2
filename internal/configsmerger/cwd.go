package configsmerger

// ResolveCwd returns the container's initial working directory: the
// CLI override when given, else the image's declared working
// directory, else "/".
func ResolveCwd(cliWorkdir, metaWorkdir string) string {
	if cliWorkdir != "" {
		return cliWorkdir
	}
	if metaWorkdir != "" {
		return metaWorkdir
	}
	return "/"
}
