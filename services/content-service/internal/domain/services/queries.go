package services

// GraphQL документы WPGraphQL. Пользовательские значения передаются только через переменные

const productFields = `
fragment ProductFields on Product {
  id
  title
  slug
  excerpt
  date
  modified
  featuredImage {
    node {
      sourceUrl
      altText
      mediaDetails {
        width
        height
      }
    }
  }
  affiliateFields {
    price
    comparePrice
    affiliateLink
    rating
    reviewCount
    features {
      feature
    }
    pros {
      pro
    }
    cons {
      con
    }
    buyButtonText
  }
  categories {
    nodes {
      id
      name
      slug
    }
  }
  seo {
    title
    metaDesc
    opengraphImage {
      sourceUrl
    }
  }
}
`

const listProductsQuery = `
query GetProducts($first: Int!, $where: RootQueryToProductConnectionWhereArgs) {
  products(first: $first, where: $where) {
    nodes {
      ...ProductFields
    }
  }
}
` + productFields

const productBySlugQuery = `
query GetProductBySlug($slug: ID!) {
  product(id: $slug, idType: SLUG) {
    ...ProductFields
    content
    tags {
      nodes {
        id
        name
        slug
      }
    }
  }
}
` + productFields

const allSlugsQuery = `
query GetAllProductSlugs($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    nodes {
      slug
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}
`

const categoriesQuery = `
query GetCategories($first: Int!) {
  categories(first: $first) {
    nodes {
      id
      name
      slug
      description
      count
    }
  }
}
`

const recentPostsQuery = `
query GetRecentPosts($count: Int!) {
  posts(first: $count, where: { orderby: { field: DATE, order: DESC } }) {
    nodes {
      id
      title
      slug
      content
      excerpt
      date
      author {
        node {
          name
          avatar {
            url
          }
        }
      }
      featuredImage {
        node {
          sourceUrl
          altText
          mediaDetails {
            width
            height
          }
        }
      }
      categories {
        nodes {
          id
          name
          slug
        }
      }
    }
  }
}
`

const searchProductsQuery = `
query SearchProducts($search: String!, $first: Int!) {
  products(first: $first, where: { search: $search }) {
    nodes {
      ...ProductFields
    }
  }
}
` + productFields
