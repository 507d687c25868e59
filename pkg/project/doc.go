// Package project updates the version properties of MSBuild project files.
//
// Only SDK-style projects are touched: the root Project element must carry an
// Sdk attribute starting with one of SupportedSdkPrefixes. Such projects are
// classified as:
//
//   - KindNuGet: the first GeneratePackageOnBuild in a top-level PropertyGroup
//     is "true" (any case). Version, ProductVersion and PackageVersion are
//     written into that PropertyGroup, and PackageVersion keeps the
//     pre-release label.
//   - KindPlain: every other supported project. Version and ProductVersion
//     are written into the first PropertyGroup, which is created when missing.
//
// Existing properties are updated in place and missing ones are appended
// after the last property of the group. The rest of the file is written back
// byte for byte, and a file whose content would not change is not rewritten.
//
// Usage:
//
//	u := project.NewUpdater(project.WithDryRun(false))
//	res, err := u.Process("src/App/App.csproj", "1.4.0-rc.1", 17)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Kind, res.PackageVersion) // nuget 1.4.0.17-rc.1
package project
