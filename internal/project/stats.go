package project

// Statistics aggregates the project-wide counts shown on documentation
// pages and by the info command.
type Statistics struct {
	Blocks          int
	Scripts         int
	Sprites         int
	Costumes        int
	Sounds          int
	Broadcasts      int
	CustomBlocks    int
	Clones          int
	CloudVariables  int
	GlobalVariables int
	SpriteVariables int
	Lists           int
	Extensions      []string
}

// Stats walks every target once and counts blocks, variables and the
// block kinds worth surfacing. Broadcast ids are deduplicated across
// targets because sprites repeat the stage's broadcast table.
func (p *Project) Stats() Statistics {
	s := Statistics{Extensions: p.Extensions}
	broadcasts := make(map[string]struct{})
	for _, t := range p.Targets {
		s.Blocks += len(t.Blocks)
		s.Costumes += len(t.Costumes)
		s.Sounds += len(t.Sounds)
		s.Lists += len(t.Lists)
		for id := range t.Broadcasts {
			broadcasts[id] = struct{}{}
		}
		for _, b := range t.Blocks {
			if b.TopLevel && !b.Shadow {
				s.Scripts++
			}
			switch b.Opcode {
			case "procedures_definition":
				s.CustomBlocks++
			case "control_create_clone_of":
				s.Clones++
			}
		}
		for _, v := range t.Variables {
			if v.Cloud {
				s.CloudVariables++
			}
		}
		if t.IsStage {
			for _, v := range t.Variables {
				if !v.Cloud {
					s.GlobalVariables++
				}
			}
		} else {
			s.Sprites++
			s.SpriteVariables += len(t.Variables)
		}
	}
	s.Broadcasts = len(broadcasts)
	return s
}
