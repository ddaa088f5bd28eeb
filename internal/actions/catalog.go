package actions

var jenjangValues = []string{"D3", "S1", "S2", "S3"}
var roleValues = []string{"admin", "dosen", "mahasiswa"}

// DefaultRegistry returns the full action catalog for the academic console:
// add/show/update/delete for each entity plus semantic materi search.
// Show and search operations are the only non-mutating actions.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(
		// Jurusan (department)
		Spec{
			Name: "addJurusan", Entity: "jurusan", Op: "add", Mutating: true,
			Description: "Create a department",
			Params: map[string]ParamSpec{
				"nama":      {Type: TypeString, Required: true, Description: "department name"},
				"deskripsi": {Type: TypeString},
			},
		},
		Spec{
			Name: "showJurusan", Entity: "jurusan", Op: "show",
			Description: "List departments, or one by id or name",
			Params: map[string]ParamSpec{
				"id":   {Type: TypeString},
				"nama": {Type: TypeString},
			},
		},
		Spec{
			Name: "updateJurusan", Entity: "jurusan", Op: "update", Mutating: true,
			Description: "Update a department",
			Params: map[string]ParamSpec{
				"id":        {Type: TypeString, Required: true},
				"nama":      {Type: TypeString},
				"deskripsi": {Type: TypeString},
			},
		},
		Spec{
			Name: "deleteJurusan", Entity: "jurusan", Op: "delete", Mutating: true,
			Description: "Delete a department",
			Params: map[string]ParamSpec{
				"id": {Type: TypeString, Required: true},
			},
		},

		// Prodi (study program)
		Spec{
			Name: "addProdi", Entity: "prodi", Op: "add", Mutating: true,
			Description: "Create a study program",
			Params: map[string]ParamSpec{
				"nama":       {Type: TypeString, Required: true},
				"jenjang":    {Type: TypeEnum, Required: true, Enum: jenjangValues, Description: "degree level"},
				"jurusan_id": {Type: TypeString, Required: true},
			},
		},
		Spec{
			Name: "showProdi", Entity: "prodi", Op: "show",
			Description: "List study programs, optionally by department",
			Params: map[string]ParamSpec{
				"jurusan_id": {Type: TypeString},
			},
		},
		Spec{
			Name: "updateProdi", Entity: "prodi", Op: "update", Mutating: true,
			Description: "Update a study program",
			Params: map[string]ParamSpec{
				"id":         {Type: TypeString, Required: true},
				"nama":       {Type: TypeString},
				"jenjang":    {Type: TypeEnum, Enum: jenjangValues},
				"jurusan_id": {Type: TypeString},
			},
		},
		Spec{
			Name: "deleteProdi", Entity: "prodi", Op: "delete", Mutating: true,
			Description: "Delete a study program",
			Params: map[string]ParamSpec{
				"id": {Type: TypeString, Required: true},
			},
		},

		// Matkul (course)
		Spec{
			Name: "addMatkul", Entity: "matkul", Op: "add", Mutating: true,
			Description: "Create a course",
			Params: map[string]ParamSpec{
				"kode":     {Type: TypeString, Required: true, Description: "unique course code"},
				"nama":     {Type: TypeString, Required: true},
				"sks":      {Type: TypeNumber, Required: true, Description: "credit units"},
				"semester": {Type: TypeNumber},
				"prodi_id": {Type: TypeString, Required: true},
			},
		},
		Spec{
			Name: "showMatkul", Entity: "matkul", Op: "show",
			Description: "List courses, optionally by study program",
			Params: map[string]ParamSpec{
				"prodi_id": {Type: TypeString},
				"kode":     {Type: TypeString},
			},
		},
		Spec{
			Name: "updateMatkul", Entity: "matkul", Op: "update", Mutating: true,
			Description: "Update a course",
			Params: map[string]ParamSpec{
				"id":       {Type: TypeString, Required: true},
				"kode":     {Type: TypeString},
				"nama":     {Type: TypeString},
				"sks":      {Type: TypeNumber},
				"semester": {Type: TypeNumber},
				"prodi_id": {Type: TypeString},
			},
		},
		Spec{
			Name: "deleteMatkul", Entity: "matkul", Op: "delete", Mutating: true,
			Description: "Delete a course",
			Params: map[string]ParamSpec{
				"id": {Type: TypeString, Required: true},
			},
		},

		// Materi (teaching material)
		Spec{
			Name: "addMateri", Entity: "materi", Op: "add", Mutating: true,
			Description: "Create a teaching material",
			Params: map[string]ParamSpec{
				"judul":     {Type: TypeString, Required: true},
				"matkul_id": {Type: TypeString, Required: true},
				"pertemuan": {Type: TypeNumber, Description: "meeting/week number"},
				"konten":    {Type: TypeString},
				"url":       {Type: TypeString},
				"lampiran":  {Type: TypeObjectArray, Description: "attachments, each {nama, url}"},
			},
		},
		Spec{
			Name: "showMateri", Entity: "materi", Op: "show",
			Description: "List teaching materials, optionally by course",
			Params: map[string]ParamSpec{
				"matkul_id": {Type: TypeString},
			},
		},
		Spec{
			Name: "updateMateri", Entity: "materi", Op: "update", Mutating: true,
			Description: "Update a teaching material",
			Params: map[string]ParamSpec{
				"id":        {Type: TypeString, Required: true},
				"judul":     {Type: TypeString},
				"matkul_id": {Type: TypeString},
				"pertemuan": {Type: TypeNumber},
				"konten":    {Type: TypeString},
				"url":       {Type: TypeString},
			},
		},
		Spec{
			Name: "deleteMateri", Entity: "materi", Op: "delete", Mutating: true,
			Description: "Delete a teaching material",
			Params: map[string]ParamSpec{
				"id": {Type: TypeString, Required: true},
			},
		},

		// Users
		Spec{
			Name: "addUser", Entity: "user", Op: "add", Mutating: true,
			Description: "Create a console account",
			Params: map[string]ParamSpec{
				"nama":  {Type: TypeString, Required: true},
				"email": {Type: TypeString, Required: true},
				"role":  {Type: TypeEnum, Required: true, Enum: roleValues},
			},
		},
		Spec{
			Name: "showUsers", Entity: "user", Op: "show",
			Description: "List console accounts",
		},
		Spec{
			Name: "updateUser", Entity: "user", Op: "update", Mutating: true,
			Description: "Update a console account",
			Params: map[string]ParamSpec{
				"id":    {Type: TypeString, Required: true},
				"nama":  {Type: TypeString},
				"email": {Type: TypeString},
				"role":  {Type: TypeEnum, Enum: roleValues},
			},
		},
		Spec{
			Name: "deleteUser", Entity: "user", Op: "delete", Mutating: true,
			Description: "Delete a console account",
			Params: map[string]ParamSpec{
				"id": {Type: TypeString, Required: true},
			},
		},

		// Semantic search over embedded materi content
		Spec{
			Name: "searchMateri", Entity: "materi", Op: "search",
			Description: "Semantic search over teaching material content",
			Params: map[string]ParamSpec{
				"query": {Type: TypeString, Required: true},
				"top_k": {Type: TypeNumber},
			},
		},
	)
}
