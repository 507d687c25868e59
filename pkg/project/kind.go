// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package project

import (
	"encoding/xml"
	"strings"

	"github.com/NVIDIA/projver/pkg/version"
	"github.com/NVIDIA/projver/pkg/xmldoc"
)

// Kind classifies a project by how its version fields are written.
type Kind int

const (
	// KindUnrecognized projects are left untouched.
	KindUnrecognized Kind = iota
	// KindPlain projects get Version and ProductVersion.
	KindPlain
	// KindNuGet projects also get PackageVersion, which keeps the pre-release label.
	KindNuGet
)

// Element and attribute names used in project files.
const (
	SdkAttribute              = "Sdk"
	PropertyGroupElement      = "PropertyGroup"
	GeneratePackageOnBuildTag = "GeneratePackageOnBuild"
	VersionField              = "Version"
	ProductVersionField       = "ProductVersion"
	PackageVersionField       = "PackageVersion"
)

// SupportedSdkPrefixes lists the Sdk attribute prefixes of projects that are updated.
var SupportedSdkPrefixes = []string{
	"Microsoft.NET.Sdk",
	"WixToolset.Sdk",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindNuGet:
		return "nuget"
	default:
		return "unrecognized"
	}
}

// MarshalText lets reports render the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// field is one value written into the target property group.
type field struct {
	name  string
	value func(version.Version) string
}

// fields lists the values written for the kind, in write order.
func (k Kind) fields() []field {
	switch k {
	case KindPlain:
		return []field{
			{VersionField, version.Version.String},
			{ProductVersionField, version.Version.String},
		}
	case KindNuGet:
		return []field{
			{VersionField, version.Version.String},
			{ProductVersionField, version.Version.String},
			{PackageVersionField, version.Version.PackageString},
		}
	default:
		return nil
	}
}

// Classify inspects the root of doc and returns the project kind together
// with the property group that receives the version fields. The group is nil
// for unrecognized projects, and for plain projects without any property group.
func Classify(doc *xmldoc.Document) (Kind, *xmldoc.Element) {
	root := doc.Root
	sdk, ok := root.Attribute(SdkAttribute)
	if !ok || !isSupportedSdk(sdk) {
		return KindUnrecognized, nil
	}

	ns := root.Name.Space
	if flag := packageFlag(root); flag != nil && strings.EqualFold(strings.TrimSpace(flag.Text()), "true") {
		return KindNuGet, flag.Parent()
	}

	return KindPlain, root.Find(xml.Name{Space: ns, Local: PropertyGroupElement})
}

// packageFlag returns the first GeneratePackageOnBuild declared in a
// top-level property group.
func packageFlag(root *xmldoc.Element) *xmldoc.Element {
	ns := root.Name.Space
	for _, pg := range root.ChildrenNamed(xml.Name{Space: ns, Local: PropertyGroupElement}) {
		if flag := pg.Child(xml.Name{Space: ns, Local: GeneratePackageOnBuildTag}); flag != nil {
			return flag
		}
	}
	return nil
}

func isSupportedSdk(sdk string) bool {
	for _, prefix := range SupportedSdkPrefixes {
		if strings.HasPrefix(sdk, prefix) {
			return true
		}
	}
	return false
}
