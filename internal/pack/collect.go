package pack

import (
	"strings"

	"github.com/nbeney/scratch-tool/internal/project"
)

// AssetRef identifies one binary asset by content hash and format.
type AssetRef struct {
	Hash string
	Ext  string
}

// MD5Ext is the canonical asset filename, "<hash>.<ext>". Assets are named
// this way both on the CDN and inside sb3 archives.
func (a AssetRef) MD5Ext() string {
	if a.Ext == "" {
		return a.Hash
	}
	return a.Hash + "." + a.Ext
}

// CollectAssets walks targets in file order, costumes before sounds, and
// returns the project's unique assets in first-seen order. Sprites reuse
// stage assets freely; each md5ext appears exactly once.
func CollectAssets(p *project.Project) []AssetRef {
	var refs []AssetRef
	seen := make(map[string]struct{})
	add := func(md5ext string) {
		if md5ext == "" {
			return
		}
		if _, dup := seen[md5ext]; dup {
			return
		}
		seen[md5ext] = struct{}{}
		refs = append(refs, splitMD5Ext(md5ext))
	}
	for _, t := range p.Targets {
		for _, c := range t.Costumes {
			add(c.MD5Ext)
		}
		for _, s := range t.Sounds {
			add(s.MD5Ext)
		}
	}
	return refs
}

func splitMD5Ext(md5ext string) AssetRef {
	if i := strings.LastIndexByte(md5ext, '.'); i >= 0 {
		return AssetRef{Hash: md5ext[:i], Ext: md5ext[i+1:]}
	}
	return AssetRef{Hash: md5ext}
}
