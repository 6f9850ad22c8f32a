package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

var inlineSeeds = []string{
	"",
	"   \n\t",
	"<p>hi</p>",
	"<ul><li>a<li>b</ul></div>",
	"<script>if(x){y()}</script><style>a{b:c}</style>",
	"a{color:red}",
	"@media screen{a{b:c;d:\"}\"}}",
	"if(a){b()}else{c()}",
	"const o={a:1,b:[1,2,{c:3}]};",
	"x = `a ${ {b:`c ${d}`} } e`",
	"x = `${",
	"'unterminated",
	"/* open",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addSampleSeeds(f)
}

func addSampleSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata", "samples")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
