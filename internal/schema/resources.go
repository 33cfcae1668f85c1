package schema

func offset() *Node {
	return Integer().Min(0).Eg(0).Describe("Offset your search results. Used for pagination.")
}

func limit() *Node {
	return Integer().Min(1).Max(100).Eg(10).Describe("Max number of results to return.")
}

func email() *Node {
	return String().Formatted("email").MinLen(3).MaxLen(254).Eg("JohnDoe@gmail.com")
}

func token() *Node {
	return String().MinLen(1).Describe("The token used to authenticate future requests")
}

// User is a registered account.
var User = Object(
	Field("_id", ObjectID()).StorageOnly().Req(),
	Field("email", email()).Req(),
	Field("password", String().MinLen(8).MaxLen(72).Eg("WeakPassword123")).RequestOnly().Req(),
	Field("password", String().Matching(`^\$2[aby]\$[0-9]{2}\$`).Describe("bcrypt hash of the password")).StorageOnly().Req(),
	Field("permissions", ArrayOf(String().MinLen(1))).StorageOnly().Req(),
	Field("createdAt", Time()).StorageOnly().Req(),
	Field("updatedAt", Time()).StorageOnly().Req(),
)

// Credentials are used to log in. Any non-empty password is compared
// against the stored hash.
var Credentials = Object(
	Field("email", email()).Req(),
	Field("password", String().MinLen(1).MaxLen(72).Eg("WeakPassword123")).Req(),
)

// Specification describes the building on a property.
var Specification = Object(
	Field("built", Integer().Min(1000).Max(3000).Eg(1999).Describe("Year the property was built")).Req(),
	Field("lot", Number().Min(0).Eg(23).Describe("Size of the property in acres")).Req(),
	Field("bedrooms", Integer().Min(0).Eg(3).Describe("Number of bedrooms")).Req(),
	Field("bathrooms", Integer().Min(0).Eg(2).Describe("Number of bathrooms")).Req(),
	Field("size", Integer().Min(1).Eg(4710).Describe("Size of the property in squarefeet")).Req(),
)

// Location is a GeoJSON point. Coordinates are latitude, longitude.
var Location = Object(
	Field("type", String().OneOf("Point")).Req(),
	Field("coordinates", ArrayOf(Number()).Len(2).Eg([]float64{33.8965908, -117.8825007})).Req(),
)

// Property is a listing.
var Property = Object(
	Field("_id", ObjectID()).StorageOnly().Req(),
	Field("owner", ObjectID().Describe("ID of the owner of the property")).StorageOnly().Req(),
	Field("address", String().MinLen(1).Eg("7266 South Golf Lane")).Req(),
	Field("price", Integer().Min(0).Eg(1640000).Describe("Price of the property in USD")).Req(),
	Field("description", String().Eg("A lovely little house by the beach!").Describe("Description of the property")).Req(),
	Field("location", Location).StorageOnly().Req(),
	Field("specification", Specification).Req(),
	Field("image", Binary().Describe("Photo of the property, JPEG, PNG, GIF or WebP")).RequestOnly().Req(),
	Field("createdAt", Time()).StorageOnly().Req(),
	Field("updatedAt", Time()).StorageOnly().Req(),
)

// PropertyPatch lists the fields an owner may change.
var PropertyPatch = Object(
	Field("price", Integer().Min(0)),
	Field("description", String()),
	Field("specification", Specification.Partial()),
)

// Offer is a cash or trade offer on a property. It is never stored.
var Offer = Object(
	Field("name", String().MinLen(1).Eg("John Doe")).Req(),
	Field("phone", String().MinLen(1).Eg("7773331234")).Req(),
	Field("homeOffer", ObjectID().Describe("ID of the property the offer is for")).Req(),
	Field("cashOffer", Integer().Min(1).Eg(200000)),
	Field("comments", String().Eg("A pool table")),
)

// PropertiesQuery filters the property list.
var PropertiesQuery = Object(
	Field("offset", offset()),
	Field("limit", limit()),
	Field("price-min", Integer().Min(0).Eg(400000).Describe("Lowest price.")),
	Field("price-max", Integer().Min(0).Eg(800000).Describe("Highest price.")),
	Field("lot-min", Number().Min(0).Eg(20).Describe("Lowest lot size.")),
	Field("lot-max", Number().Min(0).Eg(40).Describe("Highest lot size.")),
	Field("size-min", Integer().Min(0).Eg(1700).Describe("Lowest squarefeet.")),
	Field("size-max", Integer().Min(0).Eg(4000).Describe("Highest squarefeet.")),
	Field("min-bedrooms", Integer().Min(1).Max(4).Eg(3).Describe("Minimum number of bedrooms.")),
	Field("min-bathrooms", Integer().Min(1).Max(4).Eg(2).Describe("Minimum number of bathrooms.")),
)

// ListingsQuery selects the listings of a user.
var ListingsQuery = Object(
	Field("userId", ObjectID().Describe("Owner of the listings, defaults to the caller")),
	Field("offset", offset()),
	Field("limit", limit()),
)

// IDPath is the path of routes addressing a single resource.
var IDPath = Object(
	Field("id", ObjectID()).Req(),
)

var (
	TokenOutput = Object(
		Field("token", token()).Req(),
	)
	SessionOutput = Object(
		Field("token", token()).Req(),
		Field("id", ObjectID()).Req(),
	)
	StatusOutput = Object(
		Field("email", email()).Req(),
		Field("id", ObjectID()).Req(),
	)
	CreatedOutput = Object(
		Field("id", ObjectID().Describe("Newly created property's ID")).Req(),
	)
	PropertyOutput   = Property
	PropertiesOutput = ArrayOf(Property)
	ErrorOutput      = Object(
		Field("error", String()).Req(),
	)
)
